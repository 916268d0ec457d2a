package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/cv-tailor/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHTML(t *testing.T, status int, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtractJobDescription_Success(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body>
		<nav>Jobs | Company</nav>
		<h1>Senior Product Manager</h1>
		<p>  Lead growth for our marketplace.  </p>
		<script>track()</script>
		<footer>© Acme</footer>
	</body></html>`)

	text, err := ExtractJobDescription(context.Background(), server.URL, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Senior Product Manager\nLead growth for our marketplace.", text)
}

func TestExtractJobDescription_HTTPError(t *testing.T) {
	server := serveHTML(t, http.StatusNotFound, "not found")

	_, err := ExtractJobDescription(context.Background(), server.URL, Options{})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestExtractJobDescription_InvalidURL(t *testing.T) {
	_, err := ExtractJobDescription(context.Background(), "not a url", Options{})

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestExtractJobDescription_EmptyPage(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><script>render()</script></body></html>`)

	_, err := ExtractJobDescription(context.Background(), server.URL, Options{})

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "no text content")
}

func TestExtractJobDescription_BrowserFallback(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><div id="root">Loading</div></body></html>`)

	original := browserRender
	t.Cleanup(func() { browserRender = original })

	rendered := strings.Repeat("Own the roadmap. ", 40)
	var calledWith string
	browserRender = func(_ context.Context, url string, _ fetch.BrowserOptions) (string, error) {
		calledWith = url
		return "<html><body><div id=\"root\">" + rendered + "</div></body></html>", nil
	}

	text, err := ExtractJobDescription(context.Background(), server.URL, Options{UseBrowser: true})
	require.NoError(t, err)

	assert.Equal(t, server.URL, calledWith)
	assert.Equal(t, strings.TrimSpace(rendered), text)
}

func TestExtractJobDescription_BrowserFailureKeepsHTTPText(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body>Short posting</body></html>`)

	original := browserRender
	t.Cleanup(func() { browserRender = original })
	browserRender = func(context.Context, string, fetch.BrowserOptions) (string, error) {
		return "", errors.New("chrome not installed")
	}

	text, err := ExtractJobDescription(context.Background(), server.URL, Options{UseBrowser: true})
	require.NoError(t, err)
	assert.Equal(t, "Short posting", text)
}
