package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDiscardsNonNumericRecords(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "book_data.json"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	points, stats, err := Parse(f)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if stats.Records != 8 || stats.Discarded != 4 || len(points) != 4 {
		t.Fatalf("unexpected stats %+v with %d points", stats, len(points))
	}
	if points[1] != (VolumePoint{Circumference: 1.5, Length: 4, Volume: 0.7162}) {
		t.Fatalf("numeric strings should be accepted, got %+v", points[1])
	}
}

func TestParseDiscardsInfiniteValues(t *testing.T) {
	payload := `[{"circ":"Inf","len":3,"vol":0.45},{"circ":1,"len":"-infinity","vol":1},{"circ":1,"len":2,"vol":"+Inf"},{"circ":1.2,"len":3,"vol":0.45}]`
	points, stats, err := Parse(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if stats.Records != 4 || stats.Discarded != 3 || len(points) != 1 {
		t.Fatalf("unexpected stats %+v with %d points", stats, len(points))
	}
}

func TestParseRejectsNonArray(t *testing.T) {
	if _, _, err := Parse(strings.NewReader(`{"circ": 1}`)); err == nil {
		t.Fatalf("object payload should fail")
	}
}

func TestLoaderReadsLocalFile(t *testing.T) {
	table, _, err := Loader{}.Load(context.Background(), filepath.Join("testdata", "book_data.json"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if vol, ok := table.FindExactVolume(1.2, 3.0); !ok || vol != 0.45 {
		t.Fatalf("expected 0.45, got %v", vol)
	}
}

func TestLoaderFetchesRelativeToBase(t *testing.T) {
	var gotPath, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCache = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"circ":1.2,"len":3,"vol":0.45}]`))
	}))
	defer srv.Close()

	base, _ := url.Parse(srv.URL + "/app/")
	loader := Loader{Fetcher: srv.Client(), Base: base}
	table, _, err := loader.Load(context.Background(), "remote_book_data.json")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if gotPath != "/app/remote_book_data.json" || gotCache != "no-store" {
		t.Fatalf("unexpected request path=%s cache=%s", gotPath, gotCache)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 point, got %d", table.Len())
	}
}

func TestLoaderFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, _, err := (Loader{Fetcher: srv.Client()}).Load(context.Background(), srv.URL+"/book_data.json"); err == nil {
		t.Fatalf("404 should fail the load")
	}
}

func TestLoaderWithoutBaseOrFile(t *testing.T) {
	_, _, err := Loader{}.Load(context.Background(), "does-not-exist.json")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
