package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeRecipePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
				<head>
					<title>Some Blog</title>
					<script type="application/ld+json">{"@type":"Recipe","recipeIngredient":["flour","sugar"]}</script>
				</head>
				<body>
					<h1>Pie Recipe</h1>
					<script type="application/ld+json">{"recipeInstructions":["bake it"]}</script>
					<p>Long-winded life story nobody reads.</p>
				</body>
			</html>
		`))
	}))
	defer server.Close()

	s := NewWithConfig(ScraperConfig{RateLimit: 100})

	digest, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)

	// Words are joined without separators.
	assert.True(t, strings.HasPrefix(digest, "PieRecipe"), "digest should begin with the h1 title: %q", digest)
	assert.Contains(t, digest, `"recipeIngredient":["flour","sugar"]`)
	assert.Contains(t, digest, `"recipeInstructions":["bakeit"]`)
	assert.NotContains(t, digest, "life story")
	assert.NotContains(t, digest, "\n")
}

func TestScrapeDefaultTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no heading here</p></body></html>`))
	}))
	defer server.Close()

	s := NewWithConfig(ScraperConfig{RateLimit: 100})

	digest, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Recipetitlenotfound", digest)
}

func TestScrapeWordLimit(t *testing.T) {
	var page strings.Builder
	page.WriteString(`<html><body><h1>Big Page</h1><script type="application/ld+json">`)
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&page, "word%d ", i)
	}
	page.WriteString(`</script></body></html>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page.String()))
	}))
	defer server.Close()

	s := NewWithConfig(ScraperConfig{RateLimit: 100, WordLimit: 800})

	digest, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)

	// "Big", "Page", then the first 798 script words.
	assert.Contains(t, digest, "word797")
	assert.NotContains(t, digest, "word798")
}

func TestScrapeFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	s := NewWithConfig(ScraperConfig{RateLimit: 100})

	_, err := s.Scrape(context.Background(), server.URL)
	assert.ErrorContains(t, err, "status code 404")

	_, err = s.Scrape(context.Background(), "http://127.0.0.1:1/recipe")
	assert.Error(t, err)
}
