package capture

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenshotQualitySelectsPNG(t *testing.T) {
	// chromedp encodes PNG only at quality 100; the stored key and content
	// type both say png, so these must stay in lockstep
	assert.Equal(t, 100, screenshotQuality)
}

func TestSnapshotKey(t *testing.T) {
	key := snapshotKey("https://example.com")
	assert.Regexp(t, regexp.MustCompile(`^snapshots/[0-9a-f]{12}-\d+\.png$`), key)

	other := snapshotKey("https://example.org")
	assert.NotEqual(t, key[:22], other[:22], "different pages must hash to different prefixes")
}
