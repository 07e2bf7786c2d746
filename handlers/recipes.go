package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"flavourkitchen/discovery"
	"flavourkitchen/models"
	"flavourkitchen/views"
)

// selectorFrom reads the category and text query from the URL.
func selectorFrom(r *http.Request) discovery.Selector {
	q := r.URL.Query()
	return discovery.Selector{Category: q.Get("category"), Query: q.Get("q")}
}

// homeSnapshot fetches recipes and categories concurrently; the two reads do
// not depend on each other.
func (s *Site) homeSnapshot(ctx context.Context) ([]models.Recipe, []models.Category, error) {
	var (
		recipes    []models.Recipe
		categories []models.Category
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recipes, err = s.Repo.ListRecipes(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.Repo.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return recipes, categories, nil
}

// Home renders the hero, filter bar and recipe grid for ?category= and ?q=.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	recipes, categories, err := s.homeSnapshot(r.Context())
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}

	sel := selectorFrom(r)
	filtered := discovery.Filter(recipes, sel)

	s.render(w, r, http.StatusOK, "home", views.HomePage{
		Meta: views.Meta{
			Description: "Browse hand-crafted recipes from around the world.",
			Nav:         "recipes",
		},
		Hero:          views.HeroRecipe(recipes),
		RecipeCount:   len(recipes),
		CategoryCount: len(categories),
		Selector:      sel,
		Chips:         discovery.Chips(categories, sel.Category),
		Recipes:       filtered,
		Summary:       discovery.Summarize(len(recipes), filtered, categories, sel),
	})
}

type recipesResponse struct {
	Recipes []models.Recipe   `json:"recipes"`
	Summary discovery.Summary `json:"summary"`
}

// SearchRecipes is the JSON form of the home page filter, for client-side
// search as the user types.
func (s *Site) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, categories, err := s.homeSnapshot(r.Context())
	if err != nil {
		s.logFor(r).ErrorContext(r.Context(), "search recipes", "error", err, "cause", causeOf(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sel := selectorFrom(r)
	filtered := discovery.Filter(recipes, sel)
	writeJSON(w, http.StatusOK, recipesResponse{
		Recipes: filtered,
		Summary: discovery.Summarize(len(recipes), filtered, categories, sel),
	})
}

// Recipe renders one recipe by slug.
func (s *Site) Recipe(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	recipe, err := s.Repo.GetRecipeBySlug(r.Context(), slug)
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}
	if recipe == nil {
		s.notFound(w, r, "Recipe Not Found", "We couldn't find that recipe.")
		return
	}

	desc := models.Str(recipe.Metadata.Description)
	if desc == "" {
		desc = "A delicious recipe from Flavour Kitchen"
	}
	s.render(w, r, http.StatusOK, "recipe", views.RecipePage{
		Meta:   views.Meta{Title: recipe.Title, Description: desc, Nav: "recipes"},
		Recipe: *recipe,
	})
}

// Category renders a category and the recipes that reference it.
func (s *Site) Category(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	category, err := s.Repo.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}
	if category == nil {
		s.notFound(w, r, "Category Not Found", "We couldn't find that category.")
		return
	}

	recipes, err := s.Repo.ListRecipesByCategory(r.Context(), category.ID)
	if err != nil {
		s.fetchFailed(w, r, err)
		return
	}

	desc := models.Str(category.Metadata.Description)
	if desc == "" {
		desc = "Browse all " + category.Title + " recipes."
	}
	s.render(w, r, http.StatusOK, "category", views.CategoryPage{
		Meta:     views.Meta{Title: category.Title + " Recipes", Description: desc, Nav: "recipes"},
		Category: *category,
		Recipes:  recipes,
	})
}
