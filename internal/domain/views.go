package domain

// UncategorizedName is the display name of the group holding pages whose
// category matches no existing category.
const UncategorizedName = "Uncategorized"

// DefaultRecentPages is how many pages the overview lists.
const DefaultRecentPages = 5

// PagesByCategory maps every category slug to the pages filed under it, in
// their stored order. Categories without pages map to an empty slice.
func PagesByCategory(categories []Category, pages []Page) map[string][]Page {
	grouped := make(map[string][]Page, len(categories))
	for _, c := range categories {
		grouped[c.Slug] = pagesInCategory(c.Slug, pages)
	}
	return grouped
}

// UncategorizedPages returns the pages whose category matches no category
// slug, in their stored order.
func UncategorizedPages(categories []Category, pages []Page) []Page {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Slug] = true
	}
	out := []Page{}
	for _, p := range pages {
		if !known[p.Category] {
			out = append(out, p)
		}
	}
	return out
}

// PageCountForCategory counts the pages filed under category.
func PageCountForCategory(category Category, pages []Page) int {
	n := 0
	for _, p := range pages {
		if p.Category == category.Slug {
			n++
		}
	}
	return n
}

func pagesInCategory(slug string, pages []Page) []Page {
	out := []Page{}
	for _, p := range pages {
		if p.Category == slug {
			out = append(out, p)
		}
	}
	return out
}

// SidebarGroup is one navigation section.
type SidebarGroup struct {
	// Category is nil for the uncategorized group.
	Category *Category `json:"category,omitempty"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug,omitempty"`
	Count    int       `json:"count"`
	Pages    []Page    `json:"pages"`
}

// Sidebar lists one group per category, in category order, followed by the
// uncategorized group when it is not empty.
func Sidebar(state AppState) []SidebarGroup {
	grouped := PagesByCategory(state.Categories, state.Pages)

	groups := make([]SidebarGroup, 0, len(state.Categories)+1)
	for i := range state.Categories {
		c := state.Categories[i]
		pages := grouped[c.Slug]
		groups = append(groups, SidebarGroup{
			Category: &c,
			Name:     c.Name,
			Slug:     c.Slug,
			Count:    len(pages),
			Pages:    pages,
		})
	}

	if orphans := UncategorizedPages(state.Categories, state.Pages); len(orphans) > 0 {
		groups = append(groups, SidebarGroup{
			Name:  UncategorizedName,
			Count: len(orphans),
			Pages: orphans,
		})
	}
	return groups
}

// CategorySummary is a category with its page count badge.
type CategorySummary struct {
	Category
	PageCount int `json:"pageCount"`
}

// SummarizeCategories pairs each category with its page count.
func SummarizeCategories(state AppState) []CategorySummary {
	out := make([]CategorySummary, 0, len(state.Categories))
	for _, c := range state.Categories {
		out = append(out, CategorySummary{
			Category:  c,
			PageCount: PageCountForCategory(c, state.Pages),
		})
	}
	return out
}

// RecentPages returns the first n pages in stored order.
func RecentPages(pages []Page, n int) []Page {
	if n < 0 {
		n = 0
	}
	if n > len(pages) {
		n = len(pages)
	}
	out := make([]Page, n)
	copy(out, pages[:n])
	return out
}

// Overview holds the dashboard figures.
type Overview struct {
	TotalPages      int    `json:"totalPages"`
	TotalCategories int    `json:"totalCategories"`
	Uncategorized   int    `json:"uncategorized"`
	RecentPages     []Page `json:"recentPages"`
}

// Summarize computes the dashboard figures for state.
func Summarize(state AppState) Overview {
	return Overview{
		TotalPages:      len(state.Pages),
		TotalCategories: len(state.Categories),
		Uncategorized:   len(UncategorizedPages(state.Categories, state.Pages)),
		RecentPages:     RecentPages(state.Pages, DefaultRecentPages),
	}
}

// FilterPages keeps pages matching the category slug and tag. Empty filters
// match everything.
func FilterPages(pages []Page, category, tag string) []Page {
	out := []Page{}
	for _, p := range pages {
		if category != "" && p.Category != category {
			continue
		}
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}
