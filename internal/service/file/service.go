package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	// MaxLogoDimension bounds the longer edge of a stored logo in pixels.
	MaxLogoDimension = 512
	maxLogoBytes     = 5 << 20
	jpegQuality      = 85
)

type FileService interface {
	// UploadCompanyLogo normalises the image and stores it under the company's
	// logo prefix. It returns the storage key.
	UploadCompanyLogo(ctx context.Context, companyID string, file io.Reader) (string, error)

	// URL returns the public URL of key
	URL(key string) string

	// KeyFromURL reverses URL. ok is false for URLs this storage did not issue.
	KeyFromURL(url string) (key string, ok bool)

	DeleteFile(ctx context.Context, key string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadCompanyLogo implements FileService. PNG stays PNG so transparency
// survives; everything else is stored as JPEG.
func (s *fileServiceImpl) UploadCompanyLogo(ctx context.Context, companyID string, file io.Reader) (string, error) {
	buffer, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read company logo: %w", err)
	}
	if len(buffer) > maxLogoBytes {
		return "", fmt.Errorf("%w: file exceeds 5MB", company.ErrInvalidLogoFile)
	}

	data, ext, err := normalizeLogo(buffer)
	if err != nil {
		return "", err
	}

	fileID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate logo file name: %w", err)
	}
	key := fmt.Sprintf("logos/%s/%s%s", companyID, fileID.String(), ext)

	storedKey, err := s.storage.Save(ctx, bytes.NewReader(data), key)
	if err != nil {
		return "", fmt.Errorf("failed to upload company logo: %w", err)
	}
	return storedKey, nil
}

// URL implements FileService.
func (s *fileServiceImpl) URL(key string) string {
	return s.storage.URL(key)
}

// KeyFromURL implements FileService.
func (s *fileServiceImpl) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.storage.URL(""))
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// DeleteFile implements FileService.
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Remove(ctx, key)
}

// normalizeLogo decodes the upload, scales it down to MaxLogoDimension and
// re-encodes it. The extension matches the encoded format.
func normalizeLogo(buffer []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", company.ErrInvalidLogoFile, err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > MaxLogoDimension || h > MaxLogoDimension {
		nw, nh := fitWithin(w, h, MaxLogoDimension)
		img = resizeImage(img, nw, nh)
	}

	buf := new(bytes.Buffer)
	if format == "png" {
		if err := png.Encode(buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), ".png", nil
	}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}

func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
