// Package cosmic reads site content from a Cosmic bucket over its REST API.
package cosmic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flavourkitchen/cms"
	"flavourkitchen/models"
)

// DefaultBaseURL is the public Cosmic API root.
const DefaultBaseURL = "https://api.cosmicjs.com/v3"

// DefaultPageSize is used when Config.PageSize is not set. Listings page
// until the result set is exhausted, so this only bounds a single response.
const DefaultPageSize = 100

// Object types as configured in the bucket.
const (
	TypeRecipes    = "recipes"
	TypeCategories = "categories"
	TypeAboutPages = "about-pages"
)

var (
	listProps   = []string{"id", "title", "slug", "metadata"}
	detailProps = []string{"id", "title", "slug", "metadata", "content"}
)

type Config struct {
	BaseURL    string
	BucketSlug string
	ReadKey    string
	PageSize   int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements cms.Repository on a Cosmic bucket.
type Client struct {
	baseURL  string
	bucket   string
	readKey  string // never logged
	pageSize int
	http     *http.Client
	log      *slog.Logger
}

var _ cms.Repository = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BucketSlug) == "" {
		return nil, errors.New("cosmic: bucket slug is required")
	}
	if strings.TrimSpace(cfg.ReadKey) == "" {
		return nil, errors.New("cosmic: read key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		bucket:   cfg.BucketSlug,
		readKey:  cfg.ReadKey,
		pageSize: cfg.PageSize,
		http:     cfg.HTTPClient,
		log:      cfg.Logger,
	}, nil
}

// query describes one objects request.
type query struct {
	filter map[string]any
	props  []string
	depth  int
}

type objectsResponse struct {
	Objects []json.RawMessage `json:"objects"`
	Total   int               `json:"total"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *Client) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	out, err := findAll[models.Recipe](ctx, c, query{
		filter: map[string]any{"type": TypeRecipes},
		props:  listProps,
		depth:  1,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipes, err)
	}
	return out, nil
}

func (c *Client) GetRecipeBySlug(ctx context.Context, slug string) (*models.Recipe, error) {
	out, err := findOne[models.Recipe](ctx, c, query{
		filter: map[string]any{"type": TypeRecipes, "slug": slug},
		props:  detailProps,
		depth:  1,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipe, err)
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := findAll[models.Category](ctx, c, query{
		filter: map[string]any{"type": TypeCategories},
		props:  listProps,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindCategories, err)
	}
	return out, nil
}

func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	out, err := findOne[models.Category](ctx, c, query{
		filter: map[string]any{"type": TypeCategories, "slug": slug},
		props:  listProps,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindCategory, err)
	}
	return out, nil
}

func (c *Client) ListRecipesByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error) {
	out, err := findAll[models.Recipe](ctx, c, query{
		filter: map[string]any{"type": TypeRecipes, "metadata.category": categoryID},
		props:  listProps,
		depth:  1,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindRecipesByCategory, err)
	}
	return out, nil
}

func (c *Client) GetAboutPage(ctx context.Context) (*models.AboutPage, error) {
	out, err := findOne[models.AboutPage](ctx, c, query{
		filter: map[string]any{"type": TypeAboutPages},
		props:  listProps,
	})
	if err != nil {
		return nil, cms.Fetch(cms.KindAboutPage, err)
	}
	return out, nil
}

// findAll pages through every object matching q. A 404 from the store means
// an empty result.
func findAll[T any](ctx context.Context, c *Client, q query) ([]T, error) {
	out := []T{}
	skip := 0
	for {
		page, err := c.objects(ctx, q, c.pageSize, skip)
		if errors.Is(err, cms.ErrNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for i, raw := range page.Objects {
			var obj T
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("decoding object %d: %w", skip+i, err)
			}
			c.warnMalformed(ctx, obj)
			out = append(out, obj)
		}
		if len(page.Objects) == 0 {
			return out, nil
		}
		// The store may cap a page below the requested limit, so a reported
		// total wins over the short-page check.
		if page.Total > 0 {
			if len(out) >= page.Total {
				return out, nil
			}
		} else if len(page.Objects) < c.pageSize {
			return out, nil
		}
		skip += len(page.Objects)
	}
}

// findOne returns the first object matching q, or nil.
func findOne[T any](ctx context.Context, c *Client, q query) (*T, error) {
	page, err := c.objects(ctx, q, 1, 0)
	if errors.Is(err, cms.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(page.Objects) == 0 {
		return nil, nil
	}
	var obj T
	if err := json.Unmarshal(page.Objects[0], &obj); err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	c.warnMalformed(ctx, obj)
	return &obj, nil
}

// malformed is implemented by objects that drop unreadable fields instead of
// failing to decode.
type malformed interface {
	MalformedFields() []string
}

func (c *Client) warnMalformed(ctx context.Context, obj any) {
	m, ok := obj.(malformed)
	if !ok {
		return
	}
	if fields := m.MalformedFields(); len(fields) > 0 {
		c.log.WarnContext(ctx, "ignoring malformed object fields", "fields", fields)
	}
}

func (c *Client) objects(ctx context.Context, q query, limit, skip int) (*objectsResponse, error) {
	filter, err := json.Marshal(q.filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling query: %w", err)
	}

	params := url.Values{}
	params.Set("query", string(filter))
	params.Set("props", strings.Join(q.props, ","))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("skip", strconv.Itoa(skip))
	if q.depth > 0 {
		params.Set("depth", strconv.Itoa(q.depth))
	}
	c.log.DebugContext(ctx, "cosmic request", "query", string(filter), "limit", limit, "skip", skip)
	params.Set("read_key", c.readKey)

	endpoint := fmt.Sprintf("%s/buckets/%s/objects?%s", c.baseURL, url.PathEscape(c.bucket), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the full URL, read key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 20 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, cms.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Message != "" {
			return nil, fmt.Errorf("cosmic: HTTP %d: %s", resp.StatusCode, er.Message)
		}
		return nil, fmt.Errorf("cosmic: HTTP %d", resp.StatusCode)
	}

	var page objectsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	return &page, nil
}
