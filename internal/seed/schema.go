package seed

// File is the top-level structure of a seed file.
type File struct {
	Categories []CategoryProps `yaml:"categories"`
	Pages      []PageProps     `yaml:"pages"`
}

// CategoryProps describes one seeded category.
type CategoryProps struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// PageProps describes one seeded page. Content is raw HTML.
type PageProps struct {
	ID          string   `yaml:"id,omitempty"`
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Icon        string   `yaml:"icon,omitempty"`
	Content     string   `yaml:"content,omitempty"`
}
