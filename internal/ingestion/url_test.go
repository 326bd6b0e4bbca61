package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jonathan/jobjeeves/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<!DOCTYPE html>
<html>
<head><title>Backend Engineer - Acme</title></head>
<body>
<nav>Nav</nav>
<main>
<h1>Backend Engineer</h1>
<p>Build   reliable   services in Go.</p>
<form id="application-form"><label>Upload resume</label></form>
</main>
<footer>Footer</footer>
</body>
</html>`

type fakeRenderer struct {
	html  string
	err   error
	calls atomic.Int32
}

func (f *fakeRenderer) Render(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.html, f.err
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFromURL_Success(t *testing.T) {
	server := serve(t, http.StatusOK, postingHTML)

	posting, err := FromURL(context.Background(), server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer\nBuild reliable services in Go.", posting.Text)
	assert.NotContains(t, posting.Text, "Nav")
	assert.NotContains(t, posting.Text, "Upload resume")
	assert.Equal(t, SourceURL, posting.Metadata.Source)
	assert.Equal(t, server.URL, posting.Metadata.URL)
	assert.Equal(t, string(fetch.PlatformUnknown), posting.Metadata.Platform)
	assert.Equal(t, "Backend Engineer - Acme", posting.Metadata.Title)
	assert.False(t, posting.Metadata.Rendered)
}

func TestFromURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not-a-url", "example.com", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := FromURL(context.Background(), raw, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrHTTPRequestFailed)
		})
	}
}

func TestFromURL_HTTPError(t *testing.T) {
	server := serve(t, http.StatusNotFound, "not found")

	_, err := FromURL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)

	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestFromURL_EmptyPage(t *testing.T) {
	server := serve(t, http.StatusOK, "<html><body><nav>only nav</nav></body></html>")

	_, err := FromURL(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, ErrContentExtractionFailed)
}

func TestFromURL_BrowserFallback(t *testing.T) {
	server := serve(t, http.StatusOK, `<html><body><div id="root">Loading...</div></body></html>`)
	renderer := &fakeRenderer{
		html: `<html><head><title>Rendered</title></head><body><main><p>` + strings.Repeat("Go ", 200) + `</p></main></body></html>`,
	}

	posting, err := FromURL(context.Background(), server.URL, &URLOptions{UseBrowser: true, Renderer: renderer})
	require.NoError(t, err)

	assert.Equal(t, int32(1), renderer.calls.Load())
	assert.True(t, posting.Metadata.Rendered)
	assert.Equal(t, "Rendered", posting.Metadata.Title)
	assert.True(t, strings.HasPrefix(posting.Text, "Go Go Go"))
}

func TestFromURL_BrowserFailureKeepsHTTPContent(t *testing.T) {
	server := serve(t, http.StatusOK, postingHTML)
	renderer := &fakeRenderer{err: errors.New("chrome not installed")}

	posting, err := FromURL(context.Background(), server.URL, &URLOptions{UseBrowser: true, Renderer: renderer})
	require.NoError(t, err)

	assert.Equal(t, int32(1), renderer.calls.Load())
	assert.False(t, posting.Metadata.Rendered)
	assert.Contains(t, posting.Text, "Backend Engineer")
}

func TestFromURL_BrowserSkippedWhenContentSufficient(t *testing.T) {
	long := `<html><body><main><p>` + strings.Repeat("Distributed systems. ", 40) + `</p></main></body></html>`
	server := serve(t, http.StatusOK, long)
	renderer := &fakeRenderer{}

	_, err := FromURL(context.Background(), server.URL, &URLOptions{UseBrowser: true, Renderer: renderer})
	require.NoError(t, err)
	assert.Equal(t, int32(0), renderer.calls.Load())
}

func TestFromURL_DoesNotMutateFetchOptions(t *testing.T) {
	server := serve(t, http.StatusOK, postingHTML)
	opts := fetch.DefaultOptions()

	_, err := FromURL(context.Background(), server.URL, &URLOptions{Fetch: opts, Verbose: true})
	require.NoError(t, err)
	assert.False(t, opts.Verbose)
}
