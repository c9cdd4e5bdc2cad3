package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testGeneration = "treevol-static-v1"

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Generation: testGeneration, Path: "treevol.example.org/app/index.html"}

	modTime := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	payload := []byte("<html>shell</html>")
	if _, err := store.Put(context.Background(), locator, bytes.NewReader(payload), PutOptions{ModTime: modTime}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	result, err := store.Get(context.Background(), locator)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		t.Fatalf("read cached body error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("cached payload mismatch: %s", string(body))
	}
	if result.Entry.SizeBytes != int64(len(payload)) {
		t.Fatalf("size mismatch: %d", result.Entry.SizeBytes)
	}
	if !result.Entry.ModTime.Equal(modTime) {
		t.Fatalf("modtime mismatch: expected %v got %v", modTime, result.Entry.ModTime)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), Locator{Generation: testGeneration, Path: "host/missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Generation: testGeneration, Path: "host/style.css"}
	if _, err := store.Put(context.Background(), locator, bytes.NewReader([]byte("body{}")), PutOptions{}); err != nil {
		t.Fatalf("put error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Remove(context.Background(), locator); err != nil {
			t.Fatalf("remove #%d error: %v", i, err)
		}
	}
	if _, err := store.Get(context.Background(), locator); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestStoreDirectoryStyleAndFileStyleCoexist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dirLoc := Locator{Generation: testGeneration, Path: "host/app/"}
	fileLoc := Locator{Generation: testGeneration, Path: "host/app/index.html"}

	if _, err := store.Put(ctx, dirLoc, bytes.NewReader([]byte("dir")), PutOptions{}); err != nil {
		t.Fatalf("put dir-style error: %v", err)
	}
	if _, err := store.Put(ctx, fileLoc, bytes.NewReader([]byte("file")), PutOptions{}); err != nil {
		t.Fatalf("put file-style error: %v", err)
	}

	entries, err := store.List(ctx, testGeneration, "host/app/")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	got := map[string]bool{}
	for _, entry := range entries {
		got[entry.Locator.Path] = true
	}
	if !got["host/app/"] || !got["host/app/index.html"] || len(got) != 2 {
		t.Fatalf("unexpected listing: %v", got)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	fs, ok := store.(*fileStore)
	if !ok {
		t.Fatalf("unexpected store type %T", store)
	}
	filePath, err := fs.entryPath(Locator{Generation: testGeneration, Path: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if filePath != filepath.Join(fs.basePath, testGeneration, "etc", "passwd.body") {
		t.Fatalf("traversal should be cleaned inside generation, got %s", filePath)
	}
	if _, err := fs.entryPath(Locator{Generation: "../x", Path: "a"}); !errors.Is(err, ErrInvalidGeneration) {
		t.Fatalf("expected ErrInvalidGeneration, got %v", err)
	}
}

func TestStoreIgnoresDirectories(t *testing.T) {
	store := newTestStore(t)
	fs := store.(*fileStore)
	locator := Locator{Generation: testGeneration, Path: "host/icons"}

	filePath, err := fs.entryPath(locator)
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if err := os.MkdirAll(filePath, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if _, err := store.Get(context.Background(), locator); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for directory, got %v", err)
	}
}

func TestGenerationsAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, gen := range []string{"treevol-static-v2", "treevol-static-v1"} {
		loc := Locator{Generation: gen, Path: "host/index.html"}
		if _, err := store.Put(ctx, loc, bytes.NewReader([]byte(gen)), PutOptions{}); err != nil {
			t.Fatalf("put error: %v", err)
		}
	}

	gens, err := store.Generations(ctx)
	if err != nil {
		t.Fatalf("generations error: %v", err)
	}
	if len(gens) != 2 || gens[0] != "treevol-static-v1" || gens[1] != "treevol-static-v2" {
		t.Fatalf("unexpected generations: %v", gens)
	}

	if err := store.DeleteGeneration(ctx, "treevol-static-v1"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if err := store.DeleteGeneration(ctx, "treevol-static-v1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	gens, _ = store.Generations(ctx)
	if len(gens) != 1 || gens[0] != "treevol-static-v2" {
		t.Fatalf("unexpected generations after delete: %v", gens)
	}
}

// newTestStore returns a Store backed by a temporary directory.
func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
