package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"flavourkitchen/models"
)

// MemoryRepository serves content held in memory in insertion order. It backs
// the offline fixtures mode and tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	recipes    []models.Recipe
	categories []models.Category
	about      *models.AboutPage

	// Err, when set, is returned from every call wrapped as a FetchError.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Fixtures is the on-disk shape read by LoadFixtures.
type Fixtures struct {
	Recipes    []models.Recipe   `json:"recipes"`
	Categories []models.Category `json:"categories"`
	About      *models.AboutPage `json:"about,omitempty"`
}

// LoadFixtures reads a JSON fixtures file into a new MemoryRepository.
// Recipes that reference a category by id only are expanded against the
// fixture categories.
func LoadFixtures(path string) (*MemoryRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fx Fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	r := NewMemoryRepository()
	r.SeedCategories(fx.Categories...)
	r.SeedRecipes(fx.Recipes...)
	r.SetAbout(fx.About)
	return r, nil
}

func (r *MemoryRepository) SeedCategories(categories ...models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, categories...)
}

// SeedRecipes appends recipes. A category carried as a bare id is expanded
// from the categories already seeded.
func (r *MemoryRepository) SeedRecipes(recipes ...models.Recipe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recipes {
		if c := rec.Metadata.Category; c != nil && c.Slug == "" {
			for _, known := range r.categories {
				if known.ID == c.ID {
					expanded := known
					rec.Metadata.Category = &expanded
					break
				}
			}
		}
		r.recipes = append(r.recipes, rec)
	}
}

func (r *MemoryRepository) SetAbout(about *models.AboutPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.about = about
}

func (r *MemoryRepository) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindRecipes, r.Err)
	}
	out := make([]models.Recipe, len(r.recipes))
	copy(out, r.recipes)
	return out, nil
}

func (r *MemoryRepository) GetRecipeBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindRecipe, r.Err)
	}
	for _, rec := range r.recipes {
		if rec.Slug == slug {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindCategories, r.Err)
	}
	out := make([]models.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *MemoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindCategory, r.Err)
	}
	for _, c := range r.categories {
		if c.Slug == slug {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListRecipesByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindRecipesByCategory, r.Err)
	}
	out := []models.Recipe{}
	for _, rec := range r.recipes {
		if rec.Metadata.Category != nil && rec.Metadata.Category.ID == categoryID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetAboutPage(ctx context.Context) (*models.AboutPage, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, Fetch(KindAboutPage, r.Err)
	}
	if r.about == nil {
		return nil, nil
	}
	about := *r.about
	return &about, nil
}
