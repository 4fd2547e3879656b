package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"glucofeed/internal/model"
)

const rssPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>CGM accuracy improved in new study</title>
      <link>http://example.com/article1</link>
      <description>Continuous glucose monitoring results</description>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
      <guid>article-1</guid>
    </item>
    <item>
      <title>Insulin pump recall warning</title>
      <link>http://example.com/article2</link>
      <description>Device failure risk reported</description>
      <pubDate>Mon, 01 Jan 2024 11:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Meal planning with carbs in mind</title>
      <link>http://example.com/article3</link>
      <description>Low carb ideas</description>
      <pubDate>not a real date</pubDate>
    </item>
    <item>
      <link>http://example.com/article4</link>
      <description>Malformed entry without a title</description>
    </item>
  </channel>
</rss>`

const redditPayload = `{
  "data": {
    "children": [
      {"data": {"id": "abc1", "title": "Dexcom G7 first impressions", "selftext": "My glucose readings", "author": "user1", "created_utc": 1704100000, "permalink": "/r/diabetes/comments/abc1/", "ups": 42, "num_comments": 7, "score": 42}},
      {"data": {"id": "abc2", "title": "A1C down two points", "selftext": "", "author": "", "created_utc": 1704000000, "permalink": "/r/diabetes/comments/abc2/", "ups": 10, "num_comments": 3, "score": 10}},
      {"data": {"id": "abc3", "title": "", "selftext": "no title post", "author": "user3", "created_utc": 1703900000}}
    ]
  }
}`

func testFetcher() *Fetcher {
	return NewFetcher(http.DefaultClient, Options{Attempts: 3, BaseDelay: time.Millisecond})
}

func testDescriptor(url, jsonURL string) *model.FeedDescriptor {
	return &model.FeedDescriptor{
		Name:     "test-feed",
		URL:      url,
		JSONURL:  jsonURL,
		Category: model.CategoryDiabetes,
		Priority: model.PriorityHigh,
		Status:   model.FeedActive,
	}
}

func TestFetchFeedSkipsMisconfiguredURLWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	f := testFetcher()
	for _, badURL := range []string{"", "   ", "not a url"} {
		// JSONURL points at a live server; the primary URL gate must
		// still prevent any request.
		fd := testDescriptor(badURL, server.URL)
		items := f.FetchFeed(context.Background(), fd)
		if items != nil {
			t.Errorf("URL %q: expected nil items, got %d", badURL, len(items))
		}
		if fd.Status != model.FeedActive {
			t.Errorf("URL %q: config error must not change status, got %s", badURL, fd.Status)
		}
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("expected zero network calls, got %d", n)
	}
}

func TestFetchFeedParsesRSSDroppingMalformedItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	start := time.Now()
	fd := testDescriptor(server.URL, "")
	items := testFetcher().FetchFeed(context.Background(), fd)

	if len(items) != 3 {
		t.Fatalf("expected 3 items (malformed one dropped), got %d", len(items))
	}
	if fd.Status != model.FeedActive {
		t.Errorf("expected active status, got %s", fd.Status)
	}
	if fd.LastFetched == nil {
		t.Error("expected LastFetched to be set")
	}

	first := items[0]
	if first.ID != "article-1" {
		t.Errorf("expected guid as ID, got %q", first.ID)
	}
	wantTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !first.Published.Equal(wantTime) {
		t.Errorf("expected published %v, got %v", wantTime, first.Published)
	}
	if first.Sentiment != model.SentimentPositive {
		t.Errorf("expected positive sentiment, got %s", first.Sentiment)
	}
	if len(first.Keywords) == 0 {
		t.Error("expected keywords extracted")
	}

	// Unparseable date falls back to fetch time, never an invalid date.
	third := items[2]
	if third.Published.Before(start) || third.Published.After(time.Now()) {
		t.Errorf("expected fallback-to-now timestamp, got %v", third.Published)
	}
}

const atomPayload = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Test Feed</title>
  <entry>
    <title>Closed loop trial cuts a1c</title>
    <link href="http://example.com/entry1"/>
    <id>urn:entry-1</id>
    <updated>2024-01-02T10:00:00Z</updated>
    <summary>Hybrid closed loop improved time in range</summary>
    <author><name>researcher</name></author>
  </entry>
  <entry>
    <link href="http://example.com/entry2"/>
    <id>urn:entry-2</id>
    <updated>2024-01-02T09:00:00Z</updated>
    <summary>entry without a title</summary>
  </entry>
</feed>`

func TestFetchFeedParsesAtomDroppingMalformedEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomPayload))
	}))
	defer server.Close()

	fd := testDescriptor(server.URL, "")
	items := testFetcher().FetchFeed(context.Background(), fd)

	if len(items) != 1 {
		t.Fatalf("expected 1 item (titleless entry dropped), got %d", len(items))
	}
	if fd.Status != model.FeedActive {
		t.Errorf("expected active status, got %s", fd.Status)
	}

	entry := items[0]
	if entry.ID != "urn:entry-1" {
		t.Errorf("expected atom id as ID, got %q", entry.ID)
	}
	if entry.URL != "http://example.com/entry1" {
		t.Errorf("expected link href as URL, got %q", entry.URL)
	}
	// No <published> element: <updated> must fill the timestamp.
	wantTime := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	if !entry.Published.Equal(wantTime) {
		t.Errorf("expected updated time %v, got %v", wantTime, entry.Published)
	}
	if entry.Author != "researcher" {
		t.Errorf("expected author from atom name, got %q", entry.Author)
	}
	if entry.Content != "Hybrid closed loop improved time in range" {
		t.Errorf("expected summary as content, got %q", entry.Content)
	}
	if entry.Sentiment != model.SentimentPositive {
		t.Errorf("expected positive sentiment, got %s", entry.Sentiment)
	}
}

func TestFetchFeedRecoversWithinRetryBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	fd := testDescriptor(server.URL, "")
	fd.Status = model.FeedError // prior failure; success must recover it
	items := testFetcher().FetchFeed(context.Background(), fd)

	if len(items) == 0 {
		t.Fatal("expected items from third attempt")
	}
	if fd.Status != model.FeedActive {
		t.Errorf("expected recovery to active, got %s", fd.Status)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestFetchFeedMarksErrorAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fd := testDescriptor(server.URL, "")
	items := testFetcher().FetchFeed(context.Background(), fd)

	if items != nil {
		t.Errorf("expected nil items, got %d", len(items))
	}
	if fd.Status != model.FeedError {
		t.Errorf("expected error status, got %s", fd.Status)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", n)
	}
}

func TestFetchFeedPrefersJSONEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hot.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(redditPayload))
	})
	xmlHit := false
	mux.HandleFunc("/feed.rss", func(w http.ResponseWriter, r *http.Request) {
		xmlHit = true
		w.Write([]byte(rssPayload))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fd := testDescriptor(server.URL+"/feed.rss", server.URL+"/hot.json")
	items := testFetcher().FetchFeed(context.Background(), fd)

	if xmlHit {
		t.Error("primary URL fetched although JSON endpoint succeeded")
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items (titleless post dropped), got %d", len(items))
	}
	first := items[0]
	if first.Engagement.Upvotes != 42 || first.Engagement.Comments != 7 {
		t.Errorf("engagement not mapped: %+v", first.Engagement)
	}
	if !strings.Contains(first.URL, "/r/diabetes/comments/abc1/") {
		t.Errorf("expected permalink URL, got %q", first.URL)
	}
	if items[1].Author != "anonymous" {
		t.Errorf("expected anonymous fallback author, got %q", items[1].Author)
	}
	if got := time.Unix(1704100000, 0); !first.Published.Equal(got) {
		t.Errorf("expected epoch timestamp %v, got %v", got, first.Published)
	}
}

func TestFetchFeedFallsBackToXMLWhenJSONFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hot.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/feed.rss", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssPayload))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fd := testDescriptor(server.URL+"/feed.rss", server.URL+"/hot.json")
	items := testFetcher().FetchFeed(context.Background(), fd)
	if len(items) != 3 {
		t.Fatalf("expected 3 items from XML fallback, got %d", len(items))
	}
}

func TestFetchFeedCapsItemCount(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>big</title>`)
	for i := 0; i < 25; i++ {
		b.WriteString(`<item><title>Item number `)
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(`</title><link>http://example.com/</link></item>`)
	}
	b.WriteString(`</channel></rss>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(b.String()))
	}))
	defer server.Close()

	f := NewFetcher(http.DefaultClient, Options{ItemsPerFeed: 10, Attempts: 1, BaseDelay: time.Millisecond})
	items := f.FetchFeed(context.Background(), testDescriptor(server.URL, ""))
	if len(items) != 10 {
		t.Errorf("expected cap of 10 items, got %d", len(items))
	}
}

func TestFetchAllRespectsTiersAndSkipsInactive(t *testing.T) {
	var order []string
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-mu
		order = append(order, r.URL.Path)
		mu <- struct{}{}
		w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	high := testDescriptor(server.URL+"/high", "")
	high.Name = "high-feed"
	low := testDescriptor(server.URL+"/low", "")
	low.Name = "low-feed"
	low.Priority = model.PriorityLow
	inactive := testDescriptor(server.URL+"/inactive", "")
	inactive.Name = "inactive-feed"
	inactive.Status = model.FeedInactive

	results := testFetcher().FetchAll(context.Background(), []*model.FeedDescriptor{low, inactive, high})

	if _, ok := results["inactive-feed"]; ok {
		t.Error("inactive feed must never be visited")
	}
	if len(results["high-feed"]) == 0 || len(results["low-feed"]) == 0 {
		t.Fatalf("expected results for both active feeds: %v", results)
	}
	if len(order) != 2 || order[0] != "/high" || order[1] != "/low" {
		t.Errorf("expected high tier before low tier, got %v", order)
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<p>Blood &amp; sugar <b>levels</b>&nbsp;ok</p>")
	if got != "Blood & sugar levels ok" {
		t.Errorf("StripHTML = %q", got)
	}
}

func TestSynthesizeIDStable(t *testing.T) {
	a := SynthesizeID("feed", "title")
	b := SynthesizeID("feed", "title")
	c := SynthesizeID("feed", "other title")
	if a != b {
		t.Error("expected stable IDs for identical input")
	}
	if a == c {
		t.Error("expected distinct IDs for distinct input")
	}
}
