// Package cms defines the read-only content repository the site renders from
// and the error taxonomy shared by its backends.
package cms

import (
	"context"
	"errors"

	"flavourkitchen/models"
)

// Repository is the content store as the site sees it. Lookups that find
// nothing return an empty slice or a nil pointer with a nil error; every other
// failure is a *FetchError.
type Repository interface {
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipeBySlug(ctx context.Context, slug string) (*models.Recipe, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListRecipesByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error)
	GetAboutPage(ctx context.Context) (*models.AboutPage, error)
}

// ErrNotFound is what backends report internally for a missing object or an
// empty result. It never leaves a Repository implementation.
var ErrNotFound = errors.New("not found")

// Entity kinds used in FetchError.
const (
	KindRecipes           = "recipes"
	KindRecipe            = "recipe"
	KindCategories        = "categories"
	KindCategory          = "category"
	KindRecipesByCategory = "recipes by category"
	KindAboutPage         = "about page"
)

// FetchError is the one error callers see for a failed read. Its message is
// generic; the upstream cause is kept for logs.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	return "failed to fetch " + e.Kind
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch wraps err as a FetchError for kind.
func Fetch(kind string, err error) error {
	return &FetchError{Kind: kind, Err: err}
}

// IsFetchError reports whether err is a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
