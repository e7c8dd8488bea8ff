package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/tabula/internal/paging"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultURL)
	}

	u, err = parseBaseURL("  example.com:1234/posts/?x=1#frag ")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/posts" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL accepted a URL without host")
	}
}

func TestClient_ResolvesCollectionAndItemURLs(t *testing.T) {
	c, err := NewClient("http://api.test/posts")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got := c.resolve(Request{ID: 7}); got != "http://api.test/posts/7" {
		t.Fatalf("item url = %q", got)
	}
	got := c.resolve(ListRequest(paging.Page{Index: 2, Size: 5}))
	if got != "http://api.test/posts?_limit=5&_page=2" {
		t.Fatalf("list url = %q", got)
	}
}

func TestClient_ListReadsTotalCount(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("x-total-count", "12")
		_ = json.NewEncoder(w).Encode([]Record{{ID: 6, Title: "six"}, {ID: 7, Title: "seven"}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/posts")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	page, err := c.List(ctx, paging.Page{Index: 2, Size: 5})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.TotalCount != 12 || len(page.Items) != 2 || page.Items[0].ID != 6 {
		t.Fatalf("List = %#v, want 2 items and total 12", page)
	}
	if gotQuery.Get("_page") != "2" || gotQuery.Get("_limit") != "5" {
		t.Fatalf("List query = %v, want _page=2&_limit=5", gotQuery)
	}
	if !strings.HasPrefix(gotUserAgent, "tabula/") {
		t.Fatalf("User-Agent = %q, want tabula/*", gotUserAgent)
	}
}

func TestClient_ListWithoutTotalCountInfersFromItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Record{{ID: 11}, {ID: 12}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	page, err := c.List(context.Background(), paging.Page{Index: 3, Size: 5})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.TotalCount != 12 {
		t.Fatalf("TotalCount = %d, want 12", page.TotalCount)
	}
}

func TestClient_WritesSendJSONBodies(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(Record{ID: 5, Title: "t", Body: "b"})
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(Record{ID: 101, Title: "x", Body: "y"})
		case http.MethodPut:
			_ = json.NewEncoder(w).Encode(Record{ID: 5, Title: "new", Body: "old"})
		case http.MethodDelete:
			_, _ = w.Write([]byte("{}"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/posts")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	rec, err := c.Get(ctx, 5)
	if err != nil || rec.ID != 5 {
		t.Fatalf("Get = %#v, %v", rec, err)
	}
	created, err := c.Create(ctx, NewDraft("x", "y"))
	if err != nil || created.ID != 101 {
		t.Fatalf("Create = %#v, %v", created, err)
	}
	title := "new"
	updated, err := c.Update(ctx, 5, Draft{Title: &title})
	if err != nil || updated.Body != "old" {
		t.Fatalf("Update = %#v, %v", updated, err)
	}
	if err := c.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(calls))
	}
	if calls[1].method != http.MethodPost || calls[1].path != "/posts" || calls[1].body["title"] != "x" {
		t.Fatalf("create call = %#v", calls[1])
	}
	if _, ok := calls[1].body["id"]; ok {
		t.Fatalf("create body should not carry an id: %#v", calls[1].body)
	}
	if calls[2].method != http.MethodPut || calls[2].path != "/posts/5" {
		t.Fatalf("update call = %#v", calls[2])
	}
	if _, ok := calls[2].body["body"]; ok {
		t.Fatalf("partial update should omit body: %#v", calls[2].body)
	}
	if calls[3].method != http.MethodDelete || calls[3].path != "/posts/5" {
		t.Fatalf("delete call = %#v", calls[3])
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts/1":
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/posts")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Get(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("Get error = %v, want decode response error", err)
	}

	err = c.Delete(context.Background(), 404)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.NotFound() {
		t.Fatalf("Delete error = %v, want 404 APIError", err)
	}
	if Classify(err) != ErrorClassNetwork {
		t.Fatalf("Classify(404) = %q, want network", Classify(err))
	}
}

func TestClient_CancelledContextIsClassifiedCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err = c.Get(ctx, 1)
	if Classify(err) != ErrorClassCancelled {
		t.Fatalf("Classify(%v) = %q, want cancelled", err, Classify(err))
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != "" {
		t.Fatalf("Classify(nil) should be empty")
	}
	if Classify(errors.New("dial tcp: connection refused")) != ErrorClassNetwork {
		t.Fatalf("transport failure should be network class")
	}
}
