package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	for _, sub := range []string{"dictionary", "thesaurus"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", sub)
		}
	}

	want := filepath.Join(dir, "thesaurus", "don_t.json")
	if got := store.Path(lookup.Thesaurus, "don't"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	tests := []struct {
		name   string
		word   string
		result lookup.Result
	}{
		{"success", "café", lookup.Success(json.RawMessage(`[{"meta":{"id":"café"},"shortdef":["<b>x</b>"]}]`))},
		{"not found", "zzxq", lookup.NotFound([]string{"zax"})},
		{"rate limited", "late", lookup.RateLimited()},
		{"fatal", "apple", lookup.FatalError("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := store.Exists(ctx, lookup.Dictionary, tt.word)
			if err != nil || exists {
				t.Fatalf("Exists() before save = %v, %v", exists, err)
			}

			if err := store.Save(ctx, lookup.Dictionary, tt.word, tt.result); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			exists, err = store.Exists(ctx, lookup.Dictionary, tt.word)
			if err != nil || !exists {
				t.Fatalf("Exists() after save = %v, %v", exists, err)
			}

			got, err := store.Load(ctx, lookup.Dictionary, tt.word)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Status != tt.result.Status || got.Message != tt.result.Message {
				t.Errorf("Load() = %+v, want %+v", got, tt.result)
			}
		})
	}
}

func TestFileStoreEncoding(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Save(ctx, lookup.Dictionary, "café", lookup.Success(json.RawMessage(`[{"id":"café","def":"<b>"}]`))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(store.Path(lookup.Dictionary, "café"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := "[\n  {\n    \"id\": \"café\",\n    \"def\": \"<b>\"\n  }\n]"
	if string(data) != want {
		t.Errorf("file content = %q, want %q", data, want)
	}

	if err := store.Save(ctx, lookup.Thesaurus, "gone", lookup.NotFound(nil)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err = os.ReadFile(store.Path(lookup.Thesaurus, "gone"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want = "{\n  \"error\": \"Not Found\",\n  \"status_code\": 404\n}"
	if string(data) != want {
		t.Errorf("file content = %q, want %q", data, want)
	}
}

func TestFileStoreKindsAreSeparate(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Save(ctx, lookup.Dictionary, "apple", lookup.Success(json.RawMessage(`[]`))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	exists, err := store.Exists(ctx, lookup.Thesaurus, "apple")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("dictionary record must not satisfy a thesaurus check")
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	_, err = store.Load(context.Background(), lookup.Dictionary, "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Save(ctx, lookup.Dictionary, "apple", lookup.RateLimited()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, "dictionary"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "apple.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory entries = %s, want only apple.json", strings.Join(names, ", "))
	}
}

func TestFileStoreReadsLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	legacy := "{\n  \"error\": \"Max retries exceeded\",\n  \"status_code\": -1\n}"
	if err := os.WriteFile(filepath.Join(dir, "dictionary", "old.json"), []byte(legacy), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := store.Load(context.Background(), lookup.Dictionary, "old")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Status != lookup.StatusTransientError || got.Message != lookup.MsgMaxRetries {
		t.Errorf("Load() = %+v, want transient max retries", got)
	}
}
