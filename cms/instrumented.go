package cms

import (
	"context"

	"flavourkitchen/metrics"
	"flavourkitchen/models"
)

// Instrumented records the outcome of every read made through the wrapped
// Repository.
type Instrumented struct {
	next Repository
}

func Instrument(next Repository) *Instrumented {
	return &Instrumented{next: next}
}

func observe(op string, err error, found bool) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "not_found"
	}
	metrics.CMSFetches.WithLabelValues(op, outcome).Inc()
}

func (i *Instrumented) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	out, err := i.next.ListRecipes(ctx)
	observe("list_recipes", err, len(out) > 0)
	return out, err
}

func (i *Instrumented) GetRecipeBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	out, err := i.next.GetRecipeBySlug(ctx, slug)
	observe("get_recipe", err, out != nil)
	return out, err
}

func (i *Instrumented) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := i.next.ListCategories(ctx)
	observe("list_categories", err, len(out) > 0)
	return out, err
}

func (i *Instrumented) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	out, err := i.next.GetCategoryBySlug(ctx, slug)
	observe("get_category", err, out != nil)
	return out, err
}

func (i *Instrumented) ListRecipesByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error) {
	out, err := i.next.ListRecipesByCategory(ctx, categoryID)
	observe("list_recipes_by_category", err, len(out) > 0)
	return out, err
}

func (i *Instrumented) GetAboutPage(ctx context.Context) (*models.AboutPage, error) {
	out, err := i.next.GetAboutPage(ctx)
	observe("get_about_page", err, out != nil)
	return out, err
}
