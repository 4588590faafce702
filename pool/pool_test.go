package pool

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/forager/core"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestDirPoolDiscoverAndResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "target.png"), "png")
	writeFile(t, filepath.Join(dir, "sounds", "pop.wav"), "wav")
	writeFile(t, filepath.Join(dir, ".hidden"), "x")
	writeFile(t, filepath.Join(dir, ".cache", "junk"), "x")

	p := NewDirPool(dir, nil)
	if err := p.Discover(); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	files := p.Files()
	if len(files) != 2 || files[0] != "sounds/pop.wav" || files[1] != "target.png" {
		t.Errorf("unexpected files %v", files)
	}

	data, err := p.Resolve("sounds/pop.wav")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !bytes.Equal(data, []byte("wav")) {
		t.Errorf("unexpected content %q", data)
	}
}

func TestDirPoolMissingDirectory(t *testing.T) {
	p := NewDirPool(filepath.Join(t.TempDir(), "nope"), nil)
	if err := p.Discover(); err != nil {
		t.Errorf("missing directory should not be an error: %v", err)
	}
	if len(p.Files()) != 0 {
		t.Error("expected no files")
	}
}

func TestDirPoolResolveErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewDirPool(dir, nil)

	for _, ref := range []string{"", "missing.png", "../outside.png", "/etc/passwd"} {
		_, err := p.Resolve(ref)
		if !errors.Is(err, core.ErrResource) {
			t.Errorf("Resolve(%q): expected ResourceError, got %v", ref, err)
		}
	}
}

func TestMemoryPool(t *testing.T) {
	p := NewMemoryPool(map[string][]byte{"a": []byte("1")})
	p.Add("b", []byte("2"))

	if data, err := p.Resolve("b"); err != nil || string(data) != "2" {
		t.Errorf("Resolve(b) = %q, %v", data, err)
	}
	_, err := p.Resolve("c")
	var resErr *core.ResourceError
	if !errors.As(err, &resErr) || resErr.Ref != "c" {
		t.Errorf("expected ResourceError for c, got %v", err)
	}
}
