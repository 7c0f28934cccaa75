package cache

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t, afero.NewMemMapFs())
	locator := Locator{Namespace: "default", Name: "user_hydrator.go"}

	modTime := time.Now().Add(-time.Hour).UTC()
	payload := []byte("package hydrators\n")
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
		t.Fatalf("read body error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("payload mismatch: %s", string(body))
	}
	if result.Entry.SizeBytes != int64(len(payload)) {
		t.Fatalf("size mismatch: %d", result.Entry.SizeBytes)
	}
	if !result.Entry.ModTime.Equal(modTime) {
		t.Fatalf("modtime mismatch: expected %v got %v", modTime, result.Entry.ModTime)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t, afero.NewMemMapFs())
	_, err := store.Get(context.Background(), Locator{Namespace: "default", Name: "missing.go"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t, afero.NewMemMapFs())
	locator := Locator{Namespace: "default", Name: "remove.go"}
	if _, err := store.Put(context.Background(), locator, bytes.NewReader([]byte("data")), PutOptions{}); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if err := store.Remove(context.Background(), locator); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if _, err := store.Stat(context.Background(), locator); err != ErrNotFound {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := store.Remove(context.Background(), locator); err != nil {
		t.Fatalf("removing a missing artifact should succeed: %v", err)
	}
}

func TestStoreIgnoresDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := newTestStore(t, fsys)
	locator := Locator{Namespace: "default", Name: "nested"}

	fs, ok := store.(*fileStore)
	if !ok {
		t.Fatalf("unexpected store type %T", store)
	}
	filePath, err := fs.entryPath(locator)
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if err := fsys.MkdirAll(filePath, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	if _, err := store.Get(context.Background(), locator); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for directory, got %v", err)
	}
}

func TestStoreRejectsEscapingPaths(t *testing.T) {
	store := newTestStore(t, afero.NewMemMapFs())
	cases := []Locator{
		{Namespace: "", Name: "a.go"},
		{Namespace: "..", Name: "a.go"},
		{Namespace: "a/b", Name: "a.go"},
		{Namespace: "default", Name: ""},
	}
	for _, locator := range cases {
		if _, err := store.Put(context.Background(), locator, bytes.NewReader(nil), PutOptions{}); err == nil {
			t.Fatalf("expected error for %+v", locator)
		}
	}
}

func TestStoreListSkipsTempFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := newTestStore(t, fsys)
	for _, name := range []string{"b.go", "a.go"} {
		if _, err := store.Put(context.Background(), Locator{Namespace: "default", Name: name}, bytes.NewReader([]byte(name)), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}
	if err := afero.WriteFile(fsys, store.BasePath()+"/default/.artifact-123", []byte("x"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	entries, err := store.List(context.Background(), "default")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(entries) != 2 || entries[0].Locator.Name != "a.go" || entries[1].Locator.Name != "b.go" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	missing, err := store.List(context.Background(), "secondary")
	if err != nil || len(missing) != 0 {
		t.Fatalf("empty namespace should list nothing, got %v %v", missing, err)
	}
}

func TestStorePutFailsOnReadOnlyFs(t *testing.T) {
	store := newTestStore(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))
	_, err := store.Put(context.Background(), Locator{Namespace: "default", Name: "a.go"}, bytes.NewReader([]byte("x")), PutOptions{})
	if err == nil {
		t.Fatalf("read-only filesystem should reject writes")
	}
}

// newTestStore returns a Store rooted at /hydrators on the given filesystem.
func newTestStore(t *testing.T, fsys afero.Fs) Store {
	t.Helper()
	store, err := NewStore(fsys, "/hydrators")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
