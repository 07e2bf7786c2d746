// Package firestore serves site content from Cloud Firestore collections,
// for deployments that mirror the CMS into a Firestore project.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flavourkitchen/cms"
	"flavourkitchen/models"
)

const (
	recipesCollection    = "recipes"
	categoriesCollection = "categories"
	aboutCollection      = "about"
	aboutDocID           = "page"
)

type recipeDoc struct {
	Slug         string `firestore:"slug"`
	Title        string `firestore:"title"`
	Content      string `firestore:"content"`
	Description  string `firestore:"description"`
	PrepTime     string `firestore:"prep_time"`
	CookTime     string `firestore:"cook_time"`
	Servings     int64  `firestore:"servings"`
	Ingredients  string `firestore:"ingredients"`
	Instructions string `firestore:"instructions"`
	ImageURL     string `firestore:"image_url"`
	ImgixURL     string `firestore:"imgix_url"`
	CategoryID   string `firestore:"category_id"`
}

type categoryDoc struct {
	Slug        string `firestore:"slug"`
	Title       string `firestore:"title"`
	Name        string `firestore:"name"`
	Description string `firestore:"description"`
}

type aboutDoc struct {
	Headline     string `firestore:"headline"`
	Intro        string `firestore:"intro"`
	StoryTitle   string `firestore:"story_title"`
	StoryContent string `firestore:"story_content"`
	Mission      string `firestore:"mission"`
	HeroURL      string `firestore:"hero_url"`
	HeroImgixURL string `firestore:"hero_imgix_url"`
}

var ErrMissingProject = errors.New("firestore: project id is required")

// Store implements cms.Repository on a Firestore client. Document ids are the
// object ids; recipes reference their category through category_id, which
// Store expands one level deep.
type Store struct {
	client *firestore.Client
	log    *slog.Logger
}

var _ cms.Repository = (*Store)(nil)

func New(client *firestore.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, log: logger}
}

// Open creates a Firestore client for projectID and wraps it in a Store. The
// caller owns Close.
func Open(ctx context.Context, projectID string, logger *slog.Logger) (*Store, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return New(client, logger), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	out, err := s.queryRecipes(ctx, s.client.Collection(recipesCollection).Query)
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipes, err)
	}
	return out, nil
}

func (s *Store) GetRecipeBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	iter := s.client.Collection(recipesCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipe, err)
	}
	var rd recipeDoc
	if err := doc.DataTo(&rd); err != nil {
		return nil, cms.Fetch(cms.KindRecipe, fmt.Errorf("decode recipe %s: %w", doc.Ref.ID, err))
	}

	recipe := rd.toModel(doc.Ref.ID, true)
	if rd.CategoryID != "" {
		cat, err := s.categoryByID(ctx, rd.CategoryID)
		if err != nil {
			return nil, cms.Fetch(cms.KindRecipe, err)
		}
		recipe.Metadata.Category = cat
	}
	return &recipe, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.allCategories(ctx)
	if err != nil {
		return nil, cms.Fetch(cms.KindCategories, err)
	}
	return out, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	iter := s.client.Collection(categoriesCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, cms.Fetch(cms.KindCategory, err)
	}
	var cd categoryDoc
	if err := doc.DataTo(&cd); err != nil {
		return nil, cms.Fetch(cms.KindCategory, fmt.Errorf("decode category %s: %w", doc.Ref.ID, err))
	}
	c := cd.toModel(doc.Ref.ID)
	return &c, nil
}

func (s *Store) ListRecipesByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error) {
	q := s.client.Collection(recipesCollection).Where("category_id", "==", categoryID)
	out, err := s.queryRecipes(ctx, q)
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipesByCategory, err)
	}
	return out, nil
}

func (s *Store) GetAboutPage(ctx context.Context) (*models.AboutPage, error) {
	doc, err := s.client.Collection(aboutCollection).Doc(aboutDocID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, cms.Fetch(cms.KindAboutPage, err)
	}
	var ad aboutDoc
	if err := doc.DataTo(&ad); err != nil {
		return nil, cms.Fetch(cms.KindAboutPage, fmt.Errorf("decode about page: %w", err))
	}
	return ad.toModel(doc.Ref.ID), nil
}

// queryRecipes runs q and expands each recipe's category from a single read
// of the categories collection.
func (s *Store) queryRecipes(ctx context.Context, q firestore.Query) ([]models.Recipe, error) {
	categories, err := s.allCategories(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := []models.Recipe{}
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var rd recipeDoc
		if err := doc.DataTo(&rd); err != nil {
			s.log.WarnContext(ctx, "skipping malformed recipe", "recipe", doc.Ref.ID, "error", err)
			continue
		}
		recipe := rd.toModel(doc.Ref.ID, false)
		if c, ok := byID[rd.CategoryID]; ok {
			recipe.Metadata.Category = &c
		} else if rd.CategoryID != "" {
			s.log.WarnContext(ctx, "recipe references unknown category", "recipe", doc.Ref.ID, "category_id", rd.CategoryID)
		}
		out = append(out, recipe)
	}
	return out, nil
}

func (s *Store) allCategories(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	iter := s.client.Collection(categoriesCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var cd categoryDoc
		if err := doc.DataTo(&cd); err != nil {
			return nil, fmt.Errorf("decode category %s: %w", doc.Ref.ID, err)
		}
		out = append(out, cd.toModel(doc.Ref.ID))
	}
	return out, nil
}

func (s *Store) categoryByID(ctx context.Context, id string) (*models.Category, error) {
	doc, err := s.client.Collection(categoriesCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cd categoryDoc
	if err := doc.DataTo(&cd); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", id, err)
	}
	c := cd.toModel(id)
	return &c, nil
}

func (d recipeDoc) toModel(id string, withContent bool) models.Recipe {
	r := models.Recipe{
		ID:    id,
		Slug:  d.Slug,
		Title: d.Title,
		Metadata: models.RecipeMetadata{
			Description:  optional(d.Description),
			PrepTime:     optional(d.PrepTime),
			CookTime:     optional(d.CookTime),
			Ingredients:  optional(d.Ingredients),
			Instructions: optional(d.Instructions),
		},
	}
	if withContent {
		r.Content = optional(d.Content)
	}
	if d.Servings > 0 {
		n := models.Servings(d.Servings)
		r.Metadata.Servings = &n
	}
	if d.ImageURL != "" || d.ImgixURL != "" {
		r.Metadata.FeaturedImage = &models.ImageRef{URL: d.ImageURL, ImgixURL: d.ImgixURL}
	}
	return r
}

func (d categoryDoc) toModel(id string) models.Category {
	return models.Category{
		ID:    id,
		Slug:  d.Slug,
		Title: d.Title,
		Metadata: models.CategoryMetadata{
			Name:        optional(d.Name),
			Description: optional(d.Description),
		},
	}
}

func (d aboutDoc) toModel(id string) *models.AboutPage {
	a := &models.AboutPage{
		ID:    id,
		Slug:  "about",
		Title: "About",
		Metadata: models.AboutPageMetadata{
			Headline:     optional(d.Headline),
			Intro:        optional(d.Intro),
			StoryTitle:   optional(d.StoryTitle),
			StoryContent: optional(d.StoryContent),
			Mission:      optional(d.Mission),
		},
	}
	if d.HeroURL != "" || d.HeroImgixURL != "" {
		a.Metadata.HeroImage = &models.ImageRef{URL: d.HeroURL, ImgixURL: d.HeroImgixURL}
	}
	return a
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
