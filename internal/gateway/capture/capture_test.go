package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHTTPImageFetcher_Download(t *testing.T) {
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			_, _ = w.Write(data)
		case "/page.html":
			_, _ = w.Write([]byte("<html><body>hi</body></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	f := NewHTTPImageFetcher(srv.Client())

	img, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), img.Base64())

	_, err = f.Fetch(context.Background(), srv.URL+"/page.html")
	assert.ErrorContains(t, err, "not an image")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestHTTPImageFetcher_SizeLimit(t *testing.T) {
	data := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()
	f := NewHTTPImageFetcher(srv.Client())
	f.MaxBytes = 10
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "exceeds")
}

func TestHTTPImageFetcher_DataURI(t *testing.T) {
	data := pngBytes(t)
	f := NewHTTPImageFetcher(nil)
	img, err := f.Fetch(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, data, img.Data)

	_, err = f.Fetch(context.Background(), "data:text/plain,hello")
	assert.Error(t, err)
	_, err = f.Fetch(context.Background(), "")
	assert.ErrorContains(t, err, "could not extract image")
	_, err = f.Fetch(context.Background(), "ftp://example.com/a.png")
	assert.Error(t, err)
}

func TestCropValidate(t *testing.T) {
	assert.NoError(t, Crop{X: 0, Y: 10, Width: 100, Height: 50}.Validate())
	assert.Error(t, Crop{Width: 0, Height: 50}.Validate())
	assert.Error(t, Crop{Width: 10, Height: -1}.Validate())
	assert.Error(t, Crop{X: -1, Width: 10, Height: 10}.Validate())
}

func TestBrowserCapturer_RejectsBeforeLaunch(t *testing.T) {
	c := NewBrowserCapturer(0, 0, 0)
	assert.Equal(t, 1366, c.Width)
	_, err := c.Capture(context.Background(), "https://example.com", Crop{Width: 0, Height: 10})
	assert.ErrorContains(t, err, "crop area is empty")
	_, err = c.Capture(context.Background(), "file:///etc/passwd", Crop{Width: 10, Height: 10})
	assert.ErrorContains(t, err, "unsupported page url")
}
