package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"cian-radar/utils"
)

func testLogger() *utils.Logger {
	return utils.NewLogger(utils.LevelError)
}

func TestNominatimResolve(t *testing.T) {
	var gotUA, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `[{"lat":"55.7887","lon":"49.1221","display_name":"Касаткина, Казань"}]`)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	pt, err := n.Resolve(context.Background(), "Казань, Касаткина 3")
	if err != nil {
		t.Fatalf("Resolve returned %v", err)
	}

	if math.Abs(pt.Lat-55.7887) > 1e-9 || math.Abs(pt.Lon-49.1221) > 1e-9 {
		t.Errorf("Resolve = %+v, want 55.7887, 49.1221", pt)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
	if gotQuery != "Казань, Касаткина 3" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestNominatimResolveCaches(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `[{"lat":"55.7887","lon":"49.1221","display_name":"Касаткина, Казань"}]`)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	for i := 0; i < 3; i++ {
		if _, err := n.Resolve(context.Background(), "Казань, Касаткина 3"); err != nil {
			t.Fatalf("Resolve #%d returned %v", i, err)
		}
	}

	if hits != 1 {
		t.Errorf("upstream asked %d times, want 1", hits)
	}
}

func TestNominatimResolveNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	_, err := n.Resolve(context.Background(), "Unknown Place 999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestNominatimResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	if _, err := n.Resolve(context.Background(), "Москва"); err == nil {
		t.Fatal("expected an error on 503")
	}
}

func TestNominatimResolveBadCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"not-a-number","lon":"49.1","display_name":"x"}]`)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	if _, err := n.Resolve(context.Background(), "Казань"); err == nil {
		t.Fatal("expected an error on unparseable coordinates")
	}
}

func TestNominatimSuggest(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[
			{"lat":"55.78","lon":"49.12","display_name":"Касаткина, 3, Казань"},
			{"lat":"55.79","lon":"49.13","display_name":"Касаткина, 5, Казань"}
		]`)
	}))
	defer server.Close()

	n := NewNominatim(server.URL, "test-agent", 0, testLogger())
	names, err := n.Suggest(context.Background(), "Касаткина", 5)
	if err != nil {
		t.Fatalf("Suggest returned %v", err)
	}

	if gotLimit != "5" {
		t.Errorf("limit param = %q, want 5", gotLimit)
	}
	want := []string{"Касаткина, 3, Казань", "Касаткина, 5, Казань"}
	if len(names) != len(want) {
		t.Fatalf("got %d suggestions, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, names[i], want[i])
		}
	}
}
