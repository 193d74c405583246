package capture

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	domain "github.com/bryanwahyu/siteinsight/internal/domain/reports"
)

// Quality 100 makes chromedp encode the full-page shot as PNG; anything
// lower switches the browser to JPEG and would mismatch the stored key and
// content type.
const screenshotQuality = 100

// Capturer renders a page in headless Chrome and uploads the screenshot to
// the snapshot store. The returned reference is the stored object URL; pixel
// data never leaves this package.
type Capturer struct {
	store domain.SnapshotStore
}

func New(store domain.SnapshotStore) *Capturer {
	return &Capturer{store: store}
}

// Capture implements the Capturer port. Each call spins up its own browser
// context; captures for different users never share tab state.
func (c *Capturer) Capture(ctx context.Context, pageURL string, opts domain.CaptureOptions) (string, error) {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 800
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(pageURL),
		// let late layout shifts settle before the shot
		chromedp.Sleep(500 * time.Millisecond),
	}
	if opts.FullPage {
		tasks = append(tasks, chromedp.FullScreenshot(&buf, screenshotQuality))
	} else {
		tasks = append(tasks, chromedp.CaptureScreenshot(&buf))
	}

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	key := snapshotKey(pageURL)
	ref, err := c.store.Put(ctx, key, buf, "image/png")
	if err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}
	return ref, nil
}

func snapshotKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return fmt.Sprintf("snapshots/%x-%d.png", sum[:6], time.Now().UnixMilli())
}
