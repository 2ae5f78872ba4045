package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrPhotoEmpty      = errors.New("photo file is empty")
	ErrPhotoTooLarge   = errors.New("photo exceeds the 5 MB limit")
	ErrUnsupportedType = errors.New("photo must be JPEG, PNG, WebP or GIF")
	// ErrTypeMismatch means the declared content type and the sniffed file
	// header disagree — a spoofed upload.
	ErrTypeMismatch = errors.New("photo content does not match its declared type")
	ErrUnsafePath   = errors.New("photo filename resolves outside the uploads directory")
)

const MaxPhotoSize = 5 << 20

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PhotoStore writes review photos under a single uploads directory with
// server-generated names. Filenames are keyed on reviewID plus a nanosecond
// timestamp, so every upload gets a distinct name and replacing a photo can
// safely delete the previous file.
type PhotoStore struct {
	dir string
}

func NewPhotoStore(dir string) (*PhotoStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &PhotoStore{dir: abs}, nil
}

// Save validates and writes a photo, returning the stored filename. The
// declared content type and the sniffed magic bytes must agree on one of the
// allowed image formats.
func (ps *PhotoStore) Save(reviewID uuid.UUID, declaredType string, size int64, r io.Reader) (string, error) {
	if size == 0 {
		return "", ErrPhotoEmpty
	}
	if size > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}

	declared := normalizeContentType(declaredType)
	ext, ok := extByType[declared]
	if !ok {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return "", ErrPhotoEmpty
	}
	if len(data) > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}

	if !mimetype.Detect(data).Is(declared) {
		return "", ErrTypeMismatch
	}

	name := fmt.Sprintf("%s_%d%s", reviewID, time.Now().UnixNano(), ext)
	dest, err := ps.resolve(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	return name, nil
}

// Remove deletes a stored photo. Best-effort by contract: callers treat a
// failed removal as a logged warning, never as a reason to abort the
// surrounding mutation.
func (ps *PhotoStore) Remove(name string) {
	if name == "" {
		return
	}
	dest, err := ps.resolve(name)
	if err != nil {
		slog.Error("refusing to remove photo outside uploads dir", "name", name, "error", err)
		return
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to remove photo", "name", name, "error", err)
	}
}

// URL returns the public path for a stored filename.
func (ps *PhotoStore) URL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/reviews/" + name
}

// Dir returns the absolute uploads directory, for static file serving.
func (ps *PhotoStore) Dir() string {
	return ps.dir
}

// resolve joins name onto the uploads dir and verifies the result stays
// inside it, guarding against traversal via crafted names.
func (ps *PhotoStore) resolve(name string) (string, error) {
	dest := filepath.Join(ps.dir, name)
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("failed to resolve photo path: %w", err)
	}
	if !strings.HasPrefix(abs, ps.dir+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return abs, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
