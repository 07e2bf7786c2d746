package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flavourkitchen/cms"
	"flavourkitchen/contact"
	"flavourkitchen/logger"
	"flavourkitchen/mail"
	"flavourkitchen/models"
	"flavourkitchen/views"
)

func str(s string) *string { return &s }

type fakeMail struct {
	msgs []mail.Message
	err  error
}

func (m *fakeMail) Send(_ context.Context, msg mail.Message) (string, error) {
	m.msgs = append(m.msgs, msg)
	return "msg_1", m.err
}

type testSite struct {
	repo    *cms.MemoryRepository
	mail    *fakeMail
	apiKey  string
	handler http.Handler
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	return newLoggedTestSite(t, logger.Discard())
}

func newLoggedTestSite(t *testing.T, log *slog.Logger) *testSite {
	t.Helper()

	repo := cms.NewMemoryRepository()
	repo.SeedCategories(
		models.Category{ID: "c1", Slug: "thai", Title: "Thai"},
		models.Category{ID: "c2", Slug: "italian", Title: "Italian"},
	)
	repo.SeedRecipes(
		models.Recipe{ID: "r1", Slug: "pad-thai", Title: "Pad Thai", Metadata: models.RecipeMetadata{
			Description: str("Street-style noodles"),
			Ingredients: str("- rice noodles\n- tamarind"),
			Category:    &models.Category{ID: "c1"},
		}},
		models.Recipe{ID: "r2", Slug: "carbonara", Title: "Carbonara", Metadata: models.RecipeMetadata{
			Description: str("Roman pasta with egg"),
			Ingredients: str("- spaghetti\n- guanciale"),
			Category:    &models.Category{ID: "c2"},
		}},
		models.Recipe{ID: "r3", Slug: "green-curry", Title: "Green Curry", Metadata: models.RecipeMetadata{
			Category: &models.Category{ID: "c1"},
		}},
	)

	renderer, err := views.New()
	require.NoError(t, err)

	ts := &testSite{repo: repo, mail: &fakeMail{}, apiKey: "re_test"}
	site := &Site{
		Repo:  cms.Instrument(repo),
		Views: renderer,
		Relay: &contact.Relay{
			APIKey:    func() string { return ts.apiKey },
			From:      "site@example.com",
			To:        "owner@example.com",
			NewSender: func(string) mail.Sender { return ts.mail },
			Logger:    log,
		},
		Images: &ImageProxy{AllowedHosts: []string{"127.0.0.1"}, Log: log},
		Log:    log,
	}
	ts.handler = NewRouter(site, []string{"*"})
	return ts
}

func (ts *testSite) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Showing 3 of 3 recipes")
	assert.Contains(t, body, `href="/recipes/carbonara"`)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = ts.do(http.MethodGet, "/?category=thai&q=NOODLE", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "Showing 1 of 3 recipes")
	assert.Contains(t, body, "<strong>Thai</strong>")
	assert.Contains(t, body, `href="/recipes/pad-thai"`)
	assert.NotContains(t, body, `href="/recipes/carbonara"`)

	rec = ts.do(http.MethodGet, "/?q=zzz", "", "")
	assert.Contains(t, rec.Body.String(), "No recipes found")
}

func TestHome_FetchFailure(t *testing.T) {
	ts := newTestSite(t)
	ts.repo.Err = errors.New("bucket unreachable: secret detail")

	rec := ts.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestFetchFailureLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	ts := newLoggedTestSite(t, logger.NewWithWriter(&buf, logger.Config{Format: "json"}))
	ts.repo.Err = errors.New("bucket unreachable")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "content fetch failed" {
			found = true
			assert.Equal(t, "req-42", entry["request_id"])
		}
	}
	assert.True(t, found)
}

func TestSearchRecipesAPI(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.do(http.MethodGet, "/api/recipes?category=thai", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Recipes []struct {
			Slug string `json:"slug"`
		} `json:"recipes"`
		Summary struct {
			Total         int    `json:"total"`
			Filtered      int    `json:"filtered"`
			CategoryTitle string `json:"category_title"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Recipes, 2)
	assert.Equal(t, "pad-thai", got.Recipes[0].Slug)
	assert.Equal(t, "green-curry", got.Recipes[1].Slug)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 2, got.Summary.Filtered)
	assert.Equal(t, "Thai", got.Summary.CategoryTitle)
}

func TestRecipeDetail(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.do(http.MethodGet, "/recipes/pad-thai", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Pad Thai — Flavour Kitchen</title>")
	assert.Contains(t, rec.Body.String(), "<li>tamarind</li>")

	rec = ts.do(http.MethodGet, "/recipes/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recipe Not Found")
}

func TestCategoryDetail(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.do(http.MethodGet, "/categories/thai", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Thai Recipes — Flavour Kitchen</title>")
	assert.Contains(t, body, "2 recipes found")
	assert.NotContains(t, body, "carbonara")

	rec = ts.do(http.MethodGet, "/categories/french", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category Not Found")
}

func TestAbout_FallsBackOnError(t *testing.T) {
	ts := newTestSite(t)
	ts.repo.Err = errors.New("down")

	rec := ts.do(http.MethodGet, "/about", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "What We Value")
}

func TestUnknownPath(t *testing.T) {
	ts := newTestSite(t)
	rec := ts.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

const validJSON = `{"name":"Ada","email":"ada@example.com","subject":"Recipe Question","message":"Loved the soup recipe!"}`

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestContactAPI(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		body       string
		mailErr    error
		wantStatus int
		wantError  string
		wantSent   int
	}{
		{name: "sent", apiKey: "re_test", body: validJSON, wantStatus: 200, wantSent: 1},
		{name: "missing key", apiKey: "", body: validJSON, wantStatus: 500, wantError: contact.MsgNotConfigured},
		{name: "missing field", apiKey: "re_test", body: `{"name":"Ada","email":"ada@example.com","subject":"Hi"}`, wantStatus: 400, wantError: contact.MsgInvalid},
		{name: "blank field", apiKey: "re_test", body: `{"name":" ","email":"ada@example.com","subject":"Hi","message":"Hello there"}`, wantStatus: 400, wantError: contact.MsgInvalid},
		{name: "malformed body", apiKey: "re_test", body: `{oops`, wantStatus: 500, wantError: contact.MsgUnexpected},
		{name: "provider failure", apiKey: "re_test", body: validJSON, mailErr: errors.New("resend: 422"), wantStatus: 500, wantError: contact.MsgSendFailed, wantSent: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSite(t)
			ts.apiKey = tt.apiKey
			ts.mail.err = tt.mailErr

			rec := ts.do(http.MethodPost, "/api/contact", tt.body, "application/json")
			assert.Equal(t, tt.wantStatus, rec.Code)
			out := decodeJSON(t, rec)
			if tt.wantError == "" {
				assert.Equal(t, true, out["success"])
			} else {
				assert.Equal(t, tt.wantError, out["error"])
			}
			assert.Len(t, ts.mail.msgs, tt.wantSent)
		})
	}
}

func TestContactAPI_OversizedBody(t *testing.T) {
	ts := newTestSite(t)
	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"` +
		strings.Repeat("a", maxContactBody) + `"}`

	rec := ts.do(http.MethodPost, "/api/contact", body, "application/json")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, msgTooLarge, decodeJSON(t, rec)["error"])
	assert.Empty(t, ts.mail.msgs)
}

func TestContactAPI_CORSPreflight(t *testing.T) {
	ts := newTestSite(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, ts.mail.msgs)
}

func TestContactPage(t *testing.T) {
	ts := newTestSite(t)

	rec := ts.do(http.MethodGet, "/contact", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Get in Touch")

	form := url.Values{"name": {"Ada"}, "email": {"bad"}, "subject": {"Hi"}, "message": {"1234567890"}}
	rec = ts.do(http.MethodPost, "/contact", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a valid email address")
	assert.Empty(t, ts.mail.msgs)

	form.Set("email", "ada@example.com")
	rec = ts.do(http.MethodPost, "/contact", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message Sent!")
	require.Len(t, ts.mail.msgs, 1)
	assert.Equal(t, "[Flavour Kitchen Contact] Hi", ts.mail.msgs[0].Subject)
}

func TestContactPage_MissingKey(t *testing.T) {
	ts := newTestSite(t)
	ts.apiKey = ""

	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "subject": {"Hi"}, "message": {"1234567890"}}
	rec := ts.do(http.MethodPost, "/contact", form.Encode(), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email service is not configured")
	assert.Contains(t, rec.Body.String(), `value="Ada"`)
}

func TestHealthz(t *testing.T) {
	ts := newTestSite(t)
	rec := ts.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeJSON(t, rec)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "flavourkitchen", out["service"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestSite(t)
	ts.do(http.MethodGet, "/recipes/pad-thai", "", "")

	rec := ts.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flavourkitchen_http_requests_total{method="GET",route="/recipes/{slug}",status="200"}`)
	assert.Contains(t, rec.Body.String(), "flavourkitchen_cms_fetches_total")
}

func TestStaticAssets(t *testing.T) {
	ts := newTestSite(t)
	rec := ts.do(http.MethodGet, "/static/site.css", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeaderOnly is a PNG signature and a valid IHDR chunk declaring w x h,
// with no pixel data behind it.
func pngHeaderOnly(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func pngServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string][]byte{
		"/photo.png": encodePNG(t, 40, 20),
		"/wide.png":  encodePNG(t, 800, 1),
		"/huge.png":  pngHeaderOnly(100_000, 100_000),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImageProxy(t *testing.T) {
	ts := newTestSite(t)
	srv := pngServer(t)

	rec := ts.do(http.MethodGet, "/image?h=10&url="+url.QueryEscape(srv.URL+"/photo.png"), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Bounds().Dy())
	assert.Equal(t, 20, out.Bounds().Dx())
}

func TestImageProxy_ClampsWidth(t *testing.T) {
	ts := newTestSite(t)
	srv := pngServer(t)

	rec := ts.do(http.MethodGet, "/image?h=2000&url="+url.QueryEscape(srv.URL+"/wide.png"), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, maxImageWidth, out.Bounds().Dx())
	assert.Equal(t, 5, out.Bounds().Dy())
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		srcW, srcH, h int
		wantW, wantH  uint
	}{
		{srcW: 40, srcH: 20, h: 10, wantW: 20, wantH: 10},
		{srcW: 40, srcH: 1, h: 2000, wantW: maxImageWidth, wantH: 100},
		{srcW: 1, srcH: 5000, h: 500, wantW: 1, wantH: 500},
	}
	for _, tt := range tests {
		w, h := fitSize(tt.srcW, tt.srcH, tt.h)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestImageProxy_Rejects(t *testing.T) {
	ts := newTestSite(t)
	srv := pngServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{name: "no url", target: "/image", want: http.StatusBadRequest},
		{name: "host not allowed", target: "/image?url=" + url.QueryEscape("https://evil.example.com/a.png"), want: http.StatusBadRequest},
		{name: "bad scheme", target: "/image?url=" + url.QueryEscape("file:///etc/passwd"), want: http.StatusBadRequest},
		{name: "bad height", target: "/image?h=-1&url=" + url.QueryEscape(srv.URL+"/photo.png"), want: http.StatusBadRequest},
		{name: "upstream missing", target: "/image?url=" + url.QueryEscape(srv.URL+"/missing.png"), want: http.StatusBadGateway},
		{name: "declared dimensions over budget", target: "/image?url=" + url.QueryEscape(srv.URL+"/huge.png"), want: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
