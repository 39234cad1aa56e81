package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/docs/internal/domain"
)

// Mapper converts a seed file into a state document.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapState builds the document. Missing ids default to the 1-based position
// in their list and missing slugs are derived from the title or name. The
// result must satisfy domain.AppState.Validate.
func (m *Mapper) MapState(f File, now time.Time) (domain.AppState, error) {
	state := domain.EmptyState()

	for i, props := range f.Categories {
		name := strings.TrimSpace(props.Name)
		if name == "" {
			return domain.AppState{}, fmt.Errorf("category #%d: name is required", i+1)
		}
		state.Categories = append(state.Categories, domain.Category{
			ID:          orDefault(props.ID, strconv.Itoa(i+1)),
			Name:        name,
			Slug:        orDefault(props.Slug, domain.Slugify(name)),
			Description: props.Description,
			CreatedAt:   now,
		})
	}

	for i, props := range f.Pages {
		title := strings.TrimSpace(props.Title)
		if title == "" {
			return domain.AppState{}, fmt.Errorf("page #%d: title is required", i+1)
		}
		tags := props.Tags
		if tags == nil {
			tags = []string{}
		}
		state.Pages = append(state.Pages, domain.Page{
			ID:          orDefault(props.ID, strconv.Itoa(i+1)),
			Title:       title,
			Slug:        orDefault(props.Slug, domain.Slugify(title)),
			Description: props.Description,
			Category:    props.Category,
			Tags:        tags,
			Content:     props.Content,
			Icon:        props.Icon,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := state.Validate(); err != nil {
		return domain.AppState{}, fmt.Errorf("invalid seed: %w", err)
	}
	return state, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// SeedFunc loads and maps filePath, returning a function suitable for
// store.WithSeed. The file is read once, up front, so a broken seed file
// fails at startup rather than on first access.
func SeedFunc(filePath string) (func(now time.Time) domain.AppState, error) {
	f, err := NewLoader(filePath).Load()
	if err != nil {
		return nil, err
	}
	mapper := NewMapper()
	if _, err := mapper.MapState(f, time.Now()); err != nil {
		return nil, err
	}
	return func(now time.Time) domain.AppState {
		// Already validated above; MapState is deterministic for a given file.
		state, _ := mapper.MapState(f, now)
		return state
	}, nil
}
