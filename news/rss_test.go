package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Crypto Wire</title>
    <item>
      <title>SHELL token &amp; friends rally</title>
      <link>https://example.com/shell-rally</link>
      <description><![CDATA[<p>The SHELL token posted strong gains.</p>]]></description>
      <pubDate>Sat, 22 Aug 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Bitcoin steady</title>
      <link>https://example.com/btc-steady</link>
      <description>Quiet session for bitcoin.</description>
      <pubDate>Sun, 23 Aug 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const atomSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Chain Letter</title>
  <entry>
    <title>Exchange lists new token</title>
    <link href="https://example.com/listing"/>
    <summary>A new listing went live today.</summary>
    <published>2026-08-23T09:00:00Z</published>
  </entry>
</feed>`

func TestFetcher_FetchRSS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssSample))
	}))
	defer server.Close()

	articles, err := NewFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	// newest first
	assert.Equal(t, "Bitcoin steady", articles[0].Title)
	assert.Equal(t, "SHELL token & friends rally", articles[1].Title)
	assert.Equal(t, "Crypto Wire", articles[1].Source)
	assert.Equal(t, "The SHELL token posted strong gains.", articles[1].Summary)
	assert.Equal(t, "https://example.com/shell-rally", articles[1].Link)
	assert.False(t, articles[1].PublishedAt.IsZero())
	assert.NotEqual(t, articles[0].ID, articles[1].ID)
}

func TestFetcher_FetchAtom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(atomSample))
	}))
	defer server.Close()

	articles, err := NewFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, "Exchange lists new token", articles[0].Title)
	assert.Equal(t, "Chain Letter", articles[0].Source)
	assert.Equal(t, "https://example.com/listing", articles[0].Link)
}

func TestFetcher_FetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestFilterByKeywords(t *testing.T) {
	articles := []Article{
		{Title: "SHELL token rallies"},
		{Title: "Stock markets open", Summary: "no crypto here"},
		{Title: "Ethereum upgrade", Summary: "altcoin season"},
	}

	filtered := FilterByKeywords(articles, []string{"shell", "altcoin"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "SHELL token rallies", filtered[0].Title)
	assert.Equal(t, "Ethereum upgrade", filtered[1].Title)
}

func TestFilterByKeywords_EmptyKeepsAll(t *testing.T) {
	articles := []Article{{Title: "a"}, {Title: "b"}}
	assert.Len(t, FilterByKeywords(articles, nil), 2)
}
