package wiki

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

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://en.wikipedia.org/wiki/Ada_Lovelace",
		"http://en.wikipedia.org/wiki/Ada_Lovelace",
		"https://wikipedia.org/wiki/Ada_Lovelace",
		"https://en.wikipedia.org/wiki/C%2B%2B",
	}
	for _, ref := range valid {
		assert.True(t, ValidateURL(ref), "reference %q", ref)
	}

	invalid := []string{
		"",
		"Ada Lovelace",
		"https://example.com/wiki/Ada_Lovelace",
		"https://en.wikipedia.org/w/index.php?title=Ada_Lovelace",
		"ftp://en.wikipedia.org/wiki/Ada_Lovelace",
	}
	for _, ref := range invalid {
		assert.False(t, ValidateURL(ref), "reference %q", ref)
	}
}

func TestTitleFromURL(t *testing.T) {
	cases := map[string]string{
		"https://en.wikipedia.org/wiki/Ada_Lovelace":           "Ada Lovelace",
		"https://en.wikipedia.org/wiki/Ada_Lovelace#Legacy":    "Ada Lovelace",
		"https://en.wikipedia.org/wiki/Ada_Lovelace?veaction=": "Ada Lovelace",
		"https://en.wikipedia.org/wiki/C%2B%2B":                "C++",
	}
	for ref, want := range cases {
		title, err := titleFromURL(ref)
		require.NoError(t, err, "reference %q", ref)
		assert.Equal(t, want, title, "reference %q", ref)
	}

	_, err := titleFromURL("https://en.wikipedia.org/wiki/#fragment-only")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func newWikiTestServer(t *testing.T, summaryStatus int, summaryBody string, extract string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rest_v1/page/summary/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(summaryStatus)
		fmt.Fprint(w, summaryBody)
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"query":{"pages":{"784":{"extract":%q}}}}`, extract)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchBuildsDocument(t *testing.T) {
	summary := `{"type":"standard","title":"Ada Lovelace","extract":"Mathematician and writer.","thumbnail":{"source":"https://upload.example/ada.jpg"}}`
	server := newWikiTestServer(t, http.StatusOK, summary, "Full article text about Ada Lovelace.")
	client := NewHTTPClient(8000, WithBaseURL(server.URL))

	doc, err := client.Fetch(context.Background(), "https://en.wikipedia.org/wiki/Ada_Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", doc.Title)
	assert.Equal(t, "Mathematician and writer.", doc.Summary)
	assert.Equal(t, "Full article text about Ada Lovelace.", doc.Extract)
	assert.Equal(t, "https://upload.example/ada.jpg", doc.ThumbnailURL)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Ada_Lovelace", doc.SourceURL)
}

func TestFetchRejectsInvalidReferenceWithoutNetworkCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	client := NewHTTPClient(8000, WithBaseURL(server.URL))

	doc, err := client.Fetch(context.Background(), "https://example.com/wiki/Ada")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.False(t, called)
}

func TestFetchMapsMissingPage(t *testing.T) {
	server := newWikiTestServer(t, http.StatusNotFound, `{"title":"Not found"}`, "")
	client := NewHTTPClient(8000, WithBaseURL(server.URL))

	doc, err := client.Fetch(context.Background(), "https://en.wikipedia.org/wiki/No_Such_Page_XYZ")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchMapsDisambiguationPage(t *testing.T) {
	summary := `{"type":"disambiguation","title":"Mercury","extract":"Mercury may refer to:"}`
	server := newWikiTestServer(t, http.StatusOK, summary, "")
	client := NewHTTPClient(8000, WithBaseURL(server.URL))

	doc, err := client.Fetch(context.Background(), "https://en.wikipedia.org/wiki/Mercury")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrDisambiguation)
}

func TestFetchCapsExtractLength(t *testing.T) {
	summary := `{"type":"standard","title":"Ada Lovelace","extract":"Short summary."}`
	server := newWikiTestServer(t, http.StatusOK, summary, strings.Repeat("x", 500))
	client := NewHTTPClient(100, WithBaseURL(server.URL))

	doc, err := client.Fetch(context.Background(), "https://en.wikipedia.org/wiki/Ada_Lovelace")
	require.NoError(t, err)
	assert.Len(t, doc.Extract, 100)
}
