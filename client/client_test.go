package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EvanZhouDev/scope-search/models"
)

func TestSearch_Success(t *testing.T) {
	var got models.SearchRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"A","name":"a","href":"https://a.example/"},{"title":"B","name":"","href":"https://b.example/"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithAPIKey("k1"))
	results, err := c.Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Query != "golang" {
		t.Errorf("sent query %q", got.Query)
	}
	if gotKey != "k1" {
		t.Errorf("sent api key %q", gotKey)
	}
	if len(results) != 2 || results[0].Title != "A" || results[1].Href != "https://b.example/" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_EmptyResultsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":null}`))
	}))
	defer srv.Close()

	results, err := New(srv.URL).Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v, want empty non-nil", results)
	}
}

func TestSearch_ServerError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"validation", http.StatusBadRequest, `{"error":"Missing query in request body."}`, "Missing query in request body.", ""},
		{"timeout", http.StatusGatewayTimeout, `{"error":"timed out","code":"SCRAPE_TIMEOUT"}`, "timed out", "SCRAPE_TIMEOUT"},
		{"non-json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Search(context.Background(), "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.wantMsg || apiErr.Code != tt.wantCode {
				t.Errorf("got %+v", apiErr)
			}
		})
	}
}

func TestSearch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Search(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !strings.HasPrefix(err.Error(), "Cannot connect to server: ") {
		t.Errorf("err = %q", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("cause should be wrapped")
	}
}

func TestNew_DefaultBaseURL(t *testing.T) {
	if c := New(""); c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
