package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestFS_SetAndGet(t *testing.T) {
	s := tempFS(t)
	if err := s.Set(KeyDrafts, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(KeyDrafts)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("ok = false after Set")
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("value = %q", got)
	}
}

func TestFS_GetMissingKey(t *testing.T) {
	s := tempFS(t)
	_, ok, err := s.Get("never_written")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("ok = true for missing key")
	}
}

func TestFS_SetOverwrites(t *testing.T) {
	s := tempFS(t)
	_ = s.Set(KeyCustomCategories, []byte("old"))
	if err := s.Set(KeyCustomCategories, []byte("new")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ := s.Get(KeyCustomCategories)
	if string(got) != "new" {
		t.Errorf("value = %q, want %q", got, "new")
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".ansuz-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFS_InvalidKeys(t *testing.T) {
	s := tempFS(t)
	for _, key := range []string{"", "a/b", `a\b`, "../escape"} {
		if err := s.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
		if _, _, err := s.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS("/tmp/ansuz-does-not-exist-" + t.Name()); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "ansuz-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
