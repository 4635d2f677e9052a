package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrentRoundsTemperatureAndMapsIcon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "metric" {
			t.Errorf("units: got %q, want metric", q.Get("units"))
		}
		if q.Get("appid") != "key123" {
			t.Errorf("appid: got %q, want key123", q.Get("appid"))
		}
		fmt.Fprint(w, `{"current":{"temp":21.6,"weather":[{"icon":"04d"}]}}`)
	}))
	defer srv.Close()

	c := NewClient("assets")
	c.baseURL = srv.URL

	snap, err := c.Current(context.Background(), "key123", 52.52, 13.405)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snap.Temp != 22 {
		t.Errorf("temp: got %d, want 22", snap.Temp)
	}
	if snap.Icon != "assets/icons/04d.svg" {
		t.Errorf("icon: got %q, want %q", snap.Icon, "assets/icons/04d.svg")
	}
}

func TestCurrentRoundsTowardNearest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"current":{"temp":-0.4,"weather":[{"icon":"13n"}]}}`)
	}))
	defer srv.Close()

	c := NewClient("assets")
	c.baseURL = srv.URL

	snap, err := c.Current(context.Background(), "k", 0, 0)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if snap.Temp != 0 {
		t.Errorf("temp: got %d, want 0", snap.Temp)
	}
}

func TestCurrentNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("assets")
	c.baseURL = srv.URL

	if _, err := c.Current(context.Background(), "bad", 0, 0); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestCurrentEmptyConditionIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"current":{"temp":10,"weather":[]}}`)
	}))
	defer srv.Close()

	c := NewClient("assets")
	c.baseURL = srv.URL

	if _, err := c.Current(context.Background(), "k", 0, 0); err == nil {
		t.Error("expected error for missing condition entry")
	}
}
