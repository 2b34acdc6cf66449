package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetJSON_DecodesBodyAndSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != UserAgent {
			t.Errorf("Expected User-Agent %q, got %q", UserAgent, got)
		}
		if got := r.Header.Get("X-Extra"); got != "yes" {
			t.Errorf("Expected X-Extra header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"devpulse"}`))
	}))
	defer server.Close()

	client := NewClient(APIClient)
	var out struct {
		Name string `json:"name"`
	}
	err := client.GetJSON(context.Background(), server.URL, map[string]string{"X-Extra": "yes"}, &out)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "devpulse" {
		t.Errorf("Expected name 'devpulse', got %q", out.Name)
	}
}

func TestGetJSON_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(APIClient)
	var out map[string]any
	err := client.GetJSON(context.Background(), server.URL, nil, &out)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", statusErr.StatusCode)
	}
}

func TestGetJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClientWithTimeout(APIClient, 20*time.Millisecond)
	var out map[string]any
	if err := client.GetJSON(context.Background(), server.URL, nil, &out); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}
