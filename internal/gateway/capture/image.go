package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMaxImageBytes = 10 << 20

// Image is raw image bytes plus the sniffed MIME type.
type Image struct {
	MimeType string
	Data     []byte
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// HTTPImageFetcher 下载右键选中的图片（或解析 data: URI），并校验确实是图片。
type HTTPImageFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPImageFetcher(client *http.Client) *HTTPImageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPImageFetcher{Client: client, MaxBytes: defaultMaxImageBytes}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Image{}, fmt.Errorf("could not extract image")
	}
	if strings.HasPrefix(rawURL, "data:") {
		data, err := decodeDataURI(rawURL)
		if err != nil {
			return Image{}, err
		}
		return sniff(data)
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Image{}, fmt.Errorf("unsupported image url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Image{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Image{}, fmt.Errorf("image download failed: HTTP %d", resp.StatusCode)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Image{}, err
	}
	if int64(len(data)) > limit {
		return Image{}, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return sniff(data)
}

// DecodeDataURI decodes a base64 data: URI and checks it holds an image.
func DecodeDataURI(uri string) (Image, error) {
	data, err := decodeDataURI(strings.TrimSpace(uri))
	if err != nil {
		return Image{}, err
	}
	return sniff(data)
}

func sniff(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("image is empty")
	}
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i != -1 {
		mt = mt[:i]
	}
	if !strings.HasPrefix(mt, "image/") {
		return Image{}, fmt.Errorf("content is %s, not an image", mt)
	}
	return Image{MimeType: mt, Data: data}, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data uri")
	}
	comma := strings.IndexByte(uri, ',')
	if comma == -1 {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta := uri[len("data:"):comma]
	payload := uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri decode: %w", err)
	}
	return data, nil
}
