package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Widgets</title>
	<meta name="description" content="Quality widgets since 1999">
</head>
<body>
	<article>
		<h1>Acme Widgets</h1>
		<p>We build the finest widgets on the market. Our catalog spans over two
		hundred models, each hand tuned for durability and priced for every budget.</p>
		<p>Browse the catalog or contact sales for a custom quote.</p>
	</article>
</body>
</html>`

func TestFetchExtractsMetadataAndContent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "siteinsight-test/1.0")
	result, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "siteinsight-test/1.0", gotUA)
	assert.Equal(t, "Acme Widgets", result.Title)
	assert.Equal(t, "Quality widgets since 1999", result.Description)
	assert.Contains(t, result.Content, "finest widgets")
}

func TestFetchFallsBackToBodyText(t *testing.T) {
	// no article structure at all, readability has nothing to distill
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>bare</title></head><body>just   some
		scattered	text</body></html>`))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "")
	result, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, result.Content, "just some scattered text")
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "")
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(5*time.Second, "")
	_, err := c.Fetch(ctx, srv.URL)
	require.Error(t, err)
}
