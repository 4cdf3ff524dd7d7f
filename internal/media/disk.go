package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"linkup/internal/config"
	"linkup/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir     = "/tmp/linkup/media"
	DefaultMaxSizeMB    = 10
	MasterMaxSize       = 2048
	JPEGQuality         = 82
	masterExtension     = ".jpg"
	publicMediaPathSlug = "/media/"
)

// DiskStore writes uploads to a local directory and serves them under a
// configured base URL. Assets are normalized to a single JPEG master sized to
// fit MasterMaxSize.
type DiskStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewDiskStore builds a DiskStore from configuration, falling back to defaults
// for anything unset.
func NewDiskStore(cfg *config.Config) *DiskStore {
	dir := DefaultMediaDir
	baseURL := ""
	maxSizeMB := DefaultMaxSizeMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			dir = cfg.MediaDir
		}
		baseURL = strings.TrimRight(cfg.MediaBaseURL, "/")
		if cfg.MediaMaxSizeMB > 0 {
			maxSizeMB = cfg.MediaMaxSizeMB
		}
	}

	return &DiskStore{
		dir:      dir,
		baseURL:  baseURL,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

// Dir returns the directory assets are written to, for static file serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Upload(_ context.Context, in UploadInput) (*Asset, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	encoded, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewUpstreamError("media upload", err)
	}

	handle := deterministicHandle(in.UserID, encoded)
	path := s.assetPath(handle)
	if err := writeBytesToFile(path, encoded); err != nil {
		return nil, models.NewUpstreamError("media upload", err)
	}

	return &Asset{
		Handle: handle,
		URL:    s.baseURL + publicMediaPathSlug + handle + masterExtension,
	}, nil
}

func (s *DiskStore) Delete(_ context.Context, handle string) error {
	if handle == "" || !isValidHandle(handle) {
		return models.NewValidationError("Invalid media handle")
	}
	if err := os.Remove(s.assetPath(handle)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return models.NewUpstreamError("media delete", err)
	}
	return nil
}

func (s *DiskStore) assetPath(handle string) string {
	return filepath.Join(s.dir, handle+masterExtension)
}

// isValidHandle guards against path traversal in handles that came off the wire.
func isValidHandle(handle string) bool {
	if len(handle) != sha256.Size*2 {
		return false
	}
	for _, r := range handle {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deterministicHandle(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
