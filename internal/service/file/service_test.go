package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	files map[string][]byte
}

func (s *memStorage) Save(ctx context.Context, file io.Reader, key string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.files[key] = data
	return key, nil
}

func (s *memStorage) Remove(ctx context.Context, key string) error {
	delete(s.files, key)
	return nil
}

func (s *memStorage) URL(key string) string { return "http://localhost:8080/uploads/" + key }

func encodedImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	if format == "png" {
		require.NoError(t, png.Encode(buf, img))
	} else {
		require.NoError(t, jpeg.Encode(buf, img, nil))
	}
	return buf.Bytes()
}

func TestUploadCompanyLogo_ResizesLargePNG(t *testing.T) {
	store := &memStorage{files: map[string][]byte{}}
	svc := NewFileService(store)

	key, err := svc.UploadCompanyLogo(context.Background(), "c-1", bytes.NewReader(encodedImage(t, 1024, 256, "png")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "logos/c-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(store.files[key]))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, MaxLogoDimension, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestUploadCompanyLogo_SmallJPEGKeepsSize(t *testing.T) {
	store := &memStorage{files: map[string][]byte{}}
	svc := NewFileService(store)

	key, err := svc.UploadCompanyLogo(context.Background(), "c-1", bytes.NewReader(encodedImage(t, 64, 32, "jpeg")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.files[key]))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
	assert.Equal(t, "http://localhost:8080/uploads/"+key, svc.URL(key))
}

func TestUploadCompanyLogo_RejectsNonImage(t *testing.T) {
	store := &memStorage{files: map[string][]byte{}}
	svc := NewFileService(store)

	_, err := svc.UploadCompanyLogo(context.Background(), "c-1", strings.NewReader("not an image"))

	assert.ErrorIs(t, err, company.ErrInvalidLogoFile)
	assert.Empty(t, store.files)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{1024, 256, 512, 128},
		{256, 1024, 128, 512},
		{600, 600, 512, 512},
		{5000, 1, 512, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, MaxLogoDimension)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestKeyFromURL(t *testing.T) {
	svc := NewFileService(&memStorage{files: map[string][]byte{}})

	key, ok := svc.KeyFromURL("http://localhost:8080/uploads/logos/c-1/a.png")
	assert.True(t, ok)
	assert.Equal(t, "logos/c-1/a.png", key)

	_, ok = svc.KeyFromURL("https://cdn.example.com/logos/c-1/a.png")
	assert.False(t, ok)

	_, ok = svc.KeyFromURL("http://localhost:8080/uploads/")
	assert.False(t, ok)
}
