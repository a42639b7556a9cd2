package document

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hindiSentence = "यह एक परीक्षण वाक्य है।"

func hindiArticleHTML() string {
	var paragraphs strings.Builder
	for i := 0; i < 8; i++ {
		paragraphs.WriteString("<p>")
		paragraphs.WriteString(strings.Repeat(hindiSentence+" ", 6))
		paragraphs.WriteString(fmt.Sprintf("भारत की राजधानी नई दिल्ली है और यह अनुच्छेद संख्या %d है।", i+1))
		paragraphs.WriteString("</p>\n")
	}

	return `<!DOCTYPE html>
<html lang="hi">
<head><meta charset="utf-8"><title>परीक्षण लेख</title></head>
<body>
<nav><a href="/">मुख्य पृष्ठ</a></nav>
<article>
<h1>परीक्षण लेख</h1>
` + paragraphs.String() + `
</article>
<footer>कॉपीराइट</footer>
</body>
</html>`
}

func newArticleServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(hindiArticleHTML()))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><head></head><body></body></html>"))
	})
	mux.HandleFunc("/headers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Language") != "hi" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(hindiArticleHTML()))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestArticleParser(t *testing.T) {
	server := newArticleServer(t)
	parser := NewArticleParser(ArticleConfig{Timeout: 5 * time.Second})
	ctx := context.Background()

	t.Run("hindi article", func(t *testing.T) {
		result, err := parser.Extract(ctx, server.URL+"/article")
		require.NoError(t, err)
		assert.Contains(t, result.Text, "परीक्षण वाक्य")
		assert.NotContains(t, result.Text, "कॉपीराइट")
		assert.Equal(t, SourceURL, result.Kind)
		assert.Equal(t, server.URL+"/article", result.Source)
		assert.Equal(t, "hi", result.Language)
	})

	t.Run("sends hindi accept-language", func(t *testing.T) {
		_, err := parser.Extract(ctx, server.URL+"/headers")
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := parser.Extract(ctx, server.URL+"/404")
		require.Error(t, err)

		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, KindBadStatus, extErr.Kind)
		assert.Equal(t, http.StatusNotFound, extErr.StatusCode)
	})

	t.Run("empty page", func(t *testing.T) {
		_, err := parser.Extract(ctx, server.URL+"/empty")
		assert.Equal(t, KindParseFailed, KindOf(err))
	})

	t.Run("unreachable host", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		addr := closed.URL
		closed.Close()

		_, err := parser.Extract(ctx, addr+"/article")
		assert.Equal(t, KindFetchFailed, KindOf(err))
	})

	t.Run("invalid url", func(t *testing.T) {
		for _, raw := range []string{"", "not a url", "ftp://example.com/file", "http://"} {
			_, err := parser.Extract(ctx, raw)
			assert.Equal(t, KindInvalidURL, KindOf(err), "url %q", raw)
		}
	})

	t.Run("body too large", func(t *testing.T) {
		small := NewArticleParser(ArticleConfig{MaxBodyBytes: 64})
		_, err := small.Extract(ctx, server.URL+"/article")
		assert.Equal(t, KindFetchFailed, KindOf(err))
	})
}

func TestParseWithReadability(t *testing.T) {
	pageURL, err := url.Parse("http://example.com/article")
	require.NoError(t, err)

	result, err := parseWithReadability([]byte(hindiArticleHTML()), pageURL)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "अनुच्छेद संख्या 3")
	assert.Contains(t, result.Text, "\n")
	assert.NotEmpty(t, result.Title)
}

func TestAddBlockSpacing(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(addBlockSpacing("<p>एक</p><p>दो</p>")))
	require.NoError(t, err)
	assert.Equal(t, "एक\n\nदो", normalizeText(doc.Text()))
}

func TestNormalizeText(t *testing.T) {
	in := "  पहली   पंक्ति \n\n\n\n दूसरी\tपंक्ति  "
	assert.Equal(t, "पहली पंक्ति\n\nदूसरी पंक्ति", normalizeText(in))
}

func TestExtractionErrorMessage(t *testing.T) {
	err := &ExtractionError{Kind: KindBadStatus, Source: "http://x", StatusCode: 503}
	assert.Contains(t, err.Error(), "bad_status")
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.UserMessage(), "503")
}
