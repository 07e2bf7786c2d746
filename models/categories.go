package models

type Category struct {
	ID       string           `json:"id"`
	Slug     string           `json:"slug"`
	Title    string           `json:"title"`
	Metadata CategoryMetadata `json:"metadata"`
}

type CategoryMetadata struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AboutPage is the singleton object backing the about page. Every field falls
// back to built-in copy when the object, or the field, is missing.
type AboutPage struct {
	ID       string            `json:"id"`
	Slug     string            `json:"slug"`
	Title    string            `json:"title"`
	Metadata AboutPageMetadata `json:"metadata"`
}

type AboutPageMetadata struct {
	Headline     *string   `json:"headline,omitempty"`
	Intro        *string   `json:"intro,omitempty"`
	StoryTitle   *string   `json:"story_title,omitempty"`
	StoryContent *string   `json:"story_content,omitempty"`
	Mission      *string   `json:"mission,omitempty"`
	HeroImage    *ImageRef `json:"hero_image,omitempty"`
}
