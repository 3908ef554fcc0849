package popularity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/packages/sampleproject/recent" {
			t.Errorf("Path = %s, want /packages/sampleproject/recent", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"last_day":1128,"last_week":7099,"last_month":28830},"package":"sampleproject","type":"recent_downloads"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	stats, err := client.Fetch(context.Background(), "sampleproject")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if stats.Package != "sampleproject" {
		t.Errorf("package = %q, want sampleproject", stats.Package)
	}
	if stats.LastDay != 1128 || stats.LastWeek != 7099 || stats.LastMonth != 28830 {
		t.Errorf("counts = %d/%d/%d, want 1128/7099/28830", stats.LastDay, stats.LastWeek, stats.LastMonth)
	}
	if stats.FetchedAt.IsZero() {
		t.Error("FetchedAt is zero")
	}
}

func TestClientFetchCanonicalizesName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"last_day":1,"last_week":2,"last_month":3},"package":"sample-project"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.Fetch(context.Background(), "Sample_Project"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotPath != "/packages/sample-project/recent" {
		t.Errorf("path = %s, want /packages/sample-project/recent", gotPath)
	}
}

func TestClientFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Fetch(context.Background(), "no-such-package")
	if err == nil {
		t.Fatal("Fetch succeeded on 404")
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("error type = %T, want *NetworkError", err)
	}
}

func TestClientFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Fetch(context.Background(), "sampleproject")
	if err == nil {
		t.Fatal("Fetch succeeded against closed server")
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("error type = %T, want *NetworkError", err)
	}
}

func TestClientFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.Fetch(context.Background(), "sampleproject"); err == nil {
		t.Fatal("Fetch succeeded on malformed body")
	}
}

func TestClientFetchNegativeCounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"last_day":-1,"last_week":2,"last_month":3},"package":"sampleproject"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.Fetch(context.Background(), "sampleproject")
	if err == nil {
		t.Fatal("Fetch accepted negative counts")
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("error type = %T, want *NetworkError", err)
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	client := NewClient("", nil)
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultBaseURL)
	}
}
