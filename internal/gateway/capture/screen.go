package capture

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Crop 是页面视口坐标系下的截图区域（CSS 像素）。
type Crop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c Crop) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("crop area is empty (%.0fx%.0f)", c.Width, c.Height)
	}
	if c.X < 0 || c.Y < 0 {
		return fmt.Errorf("crop origin must be non-negative")
	}
	return nil
}

// BrowserCapturer renders a page in headless Chrome and captures a clipped
// PNG, standing in for the extension's visible-tab capture.
type BrowserCapturer struct {
	Width   int
	Height  int
	Timeout time.Duration
	Settle  time.Duration
}

func NewBrowserCapturer(width, height int, timeout time.Duration) *BrowserCapturer {
	if width <= 0 {
		width = 1366
	}
	if height <= 0 {
		height = 768
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserCapturer{Width: width, Height: height, Timeout: timeout, Settle: 500 * time.Millisecond}
}

func (b *BrowserCapturer) Capture(ctx context.Context, pageURL string, crop Crop) (Image, error) {
	if err := crop.Validate(); err != nil {
		return Image{}, err
	}
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Image{}, fmt.Errorf("unsupported page url %q", pageURL)
	}

	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()
	timeoutCtx, cancelTimeout := context.WithTimeout(parent, b.Timeout)
	defer cancelTimeout()

	var shot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(b.Width), int64(b.Height)),
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: crop.X, Y: crop.Y, Width: crop.Width, Height: crop.Height, Scale: 1}).
				Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return Image{}, fmt.Errorf("screen capture failed: %w", err)
	}
	return Image{MimeType: "image/png", Data: shot}, nil
}
