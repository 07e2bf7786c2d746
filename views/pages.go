package views

import (
	"flavourkitchen/contact"
	"flavourkitchen/discovery"
	"flavourkitchen/models"
)

// Meta is shared by every page.
type Meta struct {
	Title       string
	Description string
	// Nav marks the active header link: "recipes", "about" or "contact".
	Nav string
}

func (m Meta) FullTitle() string {
	if m.Title == "" {
		return SiteName
	}
	return m.Title + " — " + SiteName
}

type HomePage struct {
	Meta
	Hero          *models.Recipe
	RecipeCount   int
	CategoryCount int
	Selector      discovery.Selector
	Chips         []discovery.Chip
	Recipes       []models.Recipe
	Summary       discovery.Summary
}

type RecipePage struct {
	Meta
	Recipe models.Recipe
}

type CategoryPage struct {
	Meta
	Category models.Category
	Recipes  []models.Recipe
}

type AboutPage struct {
	Meta
	Headline     string
	Intro        string
	StoryTitle   string
	StoryContent string
	Mission      string
	HeroImage    *models.ImageRef
}

type ContactPage struct {
	Meta
	Form     *contact.Form
	Subjects []string
}

// StatusPage backs the not-found and error pages.
type StatusPage struct {
	Meta
	Heading string
	Message string
}

// Fallback copy for the about page, used field by field when the store has
// no about object or leaves a field empty.
const (
	defaultHeadline     = "About Flavour Kitchen"
	defaultIntro        = "We believe that great food brings people together. Flavour Kitchen is a community-driven recipe hub celebrating cuisines from every corner of the globe."
	defaultStoryTitle   = "Our Story"
	defaultStoryContent = "Flavour Kitchen started as a passion project by a group of home cooks who wanted to make world cuisine accessible to everyone. What began as a small collection of family recipes has grown into a vibrant library of dishes spanning dozens of cultures and traditions."
	defaultMission      = "To inspire home cooks everywhere to explore new flavours, learn timeless techniques, and share the joy of cooking with the people they love."
)

// NewAboutPage fills the about page from about, which may be nil.
func NewAboutPage(about *models.AboutPage) AboutPage {
	p := AboutPage{
		Meta: Meta{
			Title:       "About",
			Description: "Learn about Flavour Kitchen — our story, our mission, and why we love sharing recipes from around the world.",
			Nav:         "about",
		},
		Headline:     defaultHeadline,
		Intro:        defaultIntro,
		StoryTitle:   defaultStoryTitle,
		StoryContent: defaultStoryContent,
		Mission:      defaultMission,
	}
	if about == nil {
		return p
	}
	m := about.Metadata
	p.Headline = orDefault(m.Headline, p.Headline)
	p.Intro = orDefault(m.Intro, p.Intro)
	p.StoryTitle = orDefault(m.StoryTitle, p.StoryTitle)
	p.StoryContent = orDefault(m.StoryContent, p.StoryContent)
	p.Mission = orDefault(m.Mission, p.Mission)
	p.HeroImage = m.HeroImage
	return p
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// HeroRecipe returns the first recipe with an image service URL, or nil.
func HeroRecipe(recipes []models.Recipe) *models.Recipe {
	for i := range recipes {
		if recipes[i].ImgixURL() != "" {
			return &recipes[i]
		}
	}
	return nil
}
