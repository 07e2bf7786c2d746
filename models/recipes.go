package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recipe is a recipe object as read from the content store. Everything under
// Metadata may be missing.
type Recipe struct {
	ID       string         `json:"id"`
	Slug     string         `json:"slug"`
	Title    string         `json:"title"`
	Content  *string        `json:"content,omitempty"`
	Metadata RecipeMetadata `json:"metadata"`
}

type RecipeMetadata struct {
	Description   *string   `json:"description,omitempty"`
	PrepTime      *string   `json:"prep_time,omitempty"`
	CookTime      *string   `json:"cook_time,omitempty"`
	Servings      *Servings `json:"servings,omitempty"`
	Ingredients   *string   `json:"ingredients,omitempty"`
	Instructions  *string   `json:"instructions,omitempty"`
	FeaturedImage *ImageRef `json:"featured_image,omitempty"`
	// Category is a snapshot taken when the recipe was expanded at depth 1.
	Category *Category `json:"category,omitempty"`

	malformed []string
}

// UnmarshalJSON accepts the category field either expanded or as a bare id,
// and treats empty strings as absent, which is what the store sends for unset
// optional fields. A field holding a value of the wrong shape is dropped and
// named in MalformedFields rather than failing the whole object.
func (m *RecipeMetadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description   json.RawMessage `json:"description"`
		PrepTime      json.RawMessage `json:"prep_time"`
		CookTime      json.RawMessage `json:"cook_time"`
		Servings      json.RawMessage `json:"servings"`
		Ingredients   json.RawMessage `json:"ingredients"`
		Instructions  json.RawMessage `json:"instructions"`
		FeaturedImage json.RawMessage `json:"featured_image"`
		Category      json.RawMessage `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = RecipeMetadata{}

	var err error
	if m.Description, err = optionalString(raw.Description); err != nil {
		m.malformed = append(m.malformed, "description")
	}
	if m.PrepTime, err = optionalString(raw.PrepTime); err != nil {
		m.malformed = append(m.malformed, "prep_time")
	}
	if m.CookTime, err = optionalString(raw.CookTime); err != nil {
		m.malformed = append(m.malformed, "cook_time")
	}
	if m.Servings, err = optionalServings(raw.Servings); err != nil {
		m.malformed = append(m.malformed, "servings")
	}
	if m.Ingredients, err = optionalString(raw.Ingredients); err != nil {
		m.malformed = append(m.malformed, "ingredients")
	}
	if m.Instructions, err = optionalString(raw.Instructions); err != nil {
		m.malformed = append(m.malformed, "instructions")
	}
	if m.FeaturedImage, err = optionalImage(raw.FeaturedImage); err != nil {
		m.malformed = append(m.malformed, "featured_image")
	}
	if m.Category, err = optionalCategory(raw.Category); err != nil {
		m.malformed = append(m.malformed, "category")
	}
	return nil
}

// Servings is a serving count. The store sends it as a number, but hand-edited
// objects sometimes carry a numeric string instead.
type Servings int

func (s *Servings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("servings %q is not a number", str)
		}
		*s = Servings(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Servings(int(f))
	return nil
}

// ImageRef points at an image held by the store. URL is the canonical storage
// location and ImgixURL the base URL of the image transformation service.
type ImageRef struct {
	URL      string `json:"url"`
	ImgixURL string `json:"imgix_url"`
}

func (i *ImageRef) empty() bool {
	return i == nil || (i.URL == "" && i.ImgixURL == "")
}

func optionalString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func optionalServings(raw json.RawMessage) (*Servings, error) {
	if isNull(raw) || isEmptyString(raw) {
		return nil, nil
	}
	var n Servings
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalImage(raw json.RawMessage) (*ImageRef, error) {
	if isNull(raw) || isEmptyString(raw) {
		return nil, nil
	}
	var img ImageRef
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, err
	}
	if img.empty() {
		return nil, nil
	}
	return &img, nil
}

func optionalCategory(raw json.RawMessage) (*Category, error) {
	if isNull(raw) || isEmptyString(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return nil, err
		}
		return &Category{ID: id}, nil
	}
	var c Category
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isEmptyString(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte(`""`))
}

// Str dereferences an optional string, returning "" when it is absent.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CategorySlug returns the slug of the recipe's embedded category, or "" when
// the recipe has none.
func (r Recipe) CategorySlug() string {
	if r.Metadata.Category == nil {
		return ""
	}
	return r.Metadata.Category.Slug
}

// ImgixURL returns the image service base URL of the featured image, or "".
func (r Recipe) ImgixURL() string {
	if r.Metadata.FeaturedImage == nil {
		return ""
	}
	return r.Metadata.FeaturedImage.ImgixURL
}

// ServingCount returns the number of servings, or 0 when unknown.
func (r Recipe) ServingCount() int {
	if r.Metadata.Servings == nil {
		return 0
	}
	return int(*r.Metadata.Servings)
}

// MalformedFields names the metadata fields that were present but unreadable
// and so decoded as absent.
func (r Recipe) MalformedFields() []string {
	return r.Metadata.malformed
}
