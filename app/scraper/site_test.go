package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSite serves numbered listing pages and detail pages and counts hits.
type fakeSite struct {
	t         *testing.T
	mu        sync.Mutex
	hits      map[string]int
	pages     map[int][]string
	failPages map[int]bool
	tags      []string
	server    *httptest.Server
}

func newFakeSite(t *testing.T, pages map[int][]string) *fakeSite {
	t.Helper()
	site := &fakeSite{
		t:         t,
		hits:      make(map[string]int),
		pages:     pages,
		failPages: make(map[int]bool),
	}
	site.server = httptest.NewServer(http.HandlerFunc(site.serve))
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if strings.HasPrefix(r.URL.Path, "/release/") {
		fmt.Fprint(w, s.detailHTML())
		return
	}

	page := 1
	if strings.HasPrefix(r.URL.Path, "/page/") {
		n, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/page/"), "/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		page = n
	}

	if s.failPages[page] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, listingHTML(page, s.pages[page]))
}

func (s *fakeSite) pageHits(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == 1 {
		return s.hits["/"]
	}
	return s.hits["/page/"+strconv.Itoa(n)+"/"]
}

func (s *fakeSite) detailHTML() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Detail</title></head><body><article class="post">`)
	b.WriteString(`<h1 class="entry-title">Detail</h1><div class="entry-content">`)
	for i := 0; i < 6; i++ {
		b.WriteString(`<p>A long form description of the record with plenty of words so that the readable content heuristics keep this paragraph as the main body of the page.</p>`)
	}
	b.WriteString(`</div><footer class="entry-meta">`)
	for _, tag := range s.tags {
		fmt.Fprintf(&b, `<a rel="category tag" href="/category/%s/">%s</a> `, strings.ToLower(tag), tag)
	}
	b.WriteString(`</footer></article></body></html>`)
	return b.String()
}

func listingHTML(page int, titles []string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><main>`)
	for i, title := range titles {
		fmt.Fprintf(&b, `<article class="post"><h2 class="entry-title"><a href="/release/%d-%d/">%s</a></h2>`, page, i, title)
		b.WriteString(`<div class="entry-meta"><time datetime="2025-03-05T10:00:00+00:00">March 5, 2025</time></div></article>`)
	}
	b.WriteString(`</main></body></html>`)
	return b.String()
}

var testToday = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
