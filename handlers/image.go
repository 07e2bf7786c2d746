package handlers

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nfnt/resize"

	"flavourkitchen/logger"
)

const (
	defaultImageHeight = 500
	maxImageHeight     = 2000
	maxImageWidth      = 4000
	maxImageBytes      = 20 << 20
	// maxSourcePixels bounds the decoded source; a small file can declare
	// enormous dimensions.
	maxSourcePixels = 40_000_000
)

// ImageProxy fetches an image from an allowed host, scales it to the
// requested height keeping its aspect ratio, and re-encodes it. It serves
// media that has no image service URL.
type ImageProxy struct {
	AllowedHosts []string
	Client       *http.Client
	Log          *slog.Logger
}

func (p *ImageProxy) allowed(u *url.URL) bool {
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range p.AllowedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// ServeHTTP handles GET /image?url=...&h=...
func (p *ImageProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "URL parameter is required", http.StatusBadRequest)
		return
	}
	src, err := url.Parse(raw)
	if err != nil || !p.allowed(src) {
		http.Error(w, "Image host is not allowed", http.StatusBadRequest)
		return
	}

	height := defaultImageHeight
	if h := r.URL.Query().Get("h"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid height", http.StatusBadRequest)
			return
		}
		height = min(n, maxImageHeight)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, src.String(), nil)
	if err != nil {
		http.Error(w, "Failed to fetch image", http.StatusInternalServerError)
		return
	}
	resp, err := p.client().Do(req)
	if err != nil {
		logger.WithRequestID(r.Context(), p.Log).WarnContext(r.Context(), "fetch image", "url", src.String(), "error", err)
		http.Error(w, "Failed to fetch image", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		http.Error(w, "Failed to fetch image", http.StatusBadGateway)
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		http.Error(w, "Failed to fetch image", http.StatusBadGateway)
		return
	}
	if len(data) > maxImageBytes {
		http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
		return
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		http.Error(w, "Failed to decode image", http.StatusUnsupportedMediaType)
		return
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
		return
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Empty() {
		http.Error(w, "Failed to decode image", http.StatusUnsupportedMediaType)
		return
	}

	outW, outH := fitSize(img.Bounds().Dx(), img.Bounds().Dy(), height)
	resized := resize.Resize(outW, outH, img, resize.Lanczos3)

	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		err = jpeg.Encode(w, resized, &jpeg.Options{Quality: 85})
	case "png":
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		err = png.Encode(w, resized)
	default:
		http.Error(w, "Unsupported image format", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		logger.WithRequestID(r.Context(), p.Log).WarnContext(r.Context(), "encode image", "error", err)
	}
}

// fitSize scales srcW x srcH to height h, then shrinks both sides if the
// width would exceed maxImageWidth. Neither side drops below one pixel.
func fitSize(srcW, srcH, h int) (uint, uint) {
	aspect := float64(srcW) / float64(srcH)
	width := float64(h) * aspect
	height := float64(h)
	if width > maxImageWidth {
		width = maxImageWidth
		height = width / aspect
	}
	return uint(max(width, 1)), uint(max(height, 1))
}

func (p *ImageProxy) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}
