package pool

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lixenwraith/forager/core"
)

// DirPool resolves resource references to files below a root directory
type DirPool struct {
	root   string
	logger *log.Logger

	mu    sync.RWMutex
	files []string // Discovered refs, slash separated, relative to root
}

// NewDirPool creates a pool rooted at dir
func NewDirPool(dir string, logger *log.Logger) *DirPool {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DirPool{root: dir, logger: logger}
}

// Root returns the pool directory
func (p *DirPool) Root() string {
	return p.root
}

// Discover scans the pool directory for resource files, skipping hidden entries.
// A missing directory is not an error; the pool is simply empty.
func (p *DirPool) Discover() error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		p.logger.Printf("Pool directory '%s' does not exist, no resources discovered", p.root)
		return nil
	}

	var files []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != p.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan pool directory: %w", err)
	}
	sort.Strings(files)

	p.mu.Lock()
	p.files = files
	p.mu.Unlock()

	p.logger.Printf("Discovered %d resource(s) in %s", len(files), p.root)
	return nil
}

// Files returns the references found by the last Discover
func (p *DirPool) Files() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

// Resolve reads the file for ref. References may not leave the pool directory.
func (p *DirPool) Resolve(ref string) ([]byte, error) {
	if ref == "" {
		return nil, &core.ResourceError{Ref: ref, Err: errors.New("empty reference")}
	}
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, &core.ResourceError{Ref: ref, Err: errors.New("reference escapes the pool")}
	}

	data, err := os.ReadFile(filepath.Join(p.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &core.ResourceError{Ref: ref}
		}
		return nil, &core.ResourceError{Ref: ref, Err: err}
	}
	return data, nil
}

// MemoryPool is an in-memory pool, used by tests and embedded resources
type MemoryPool struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryPool creates a pool holding files
func NewMemoryPool(files map[string][]byte) *MemoryPool {
	p := &MemoryPool{files: make(map[string][]byte, len(files))}
	for k, v := range files {
		p.files[k] = v
	}
	return p
}

// Add stores data under ref
func (p *MemoryPool) Add(ref string, data []byte) {
	p.mu.Lock()
	p.files[ref] = data
	p.mu.Unlock()
}

// Resolve returns the data stored under ref
func (p *MemoryPool) Resolve(ref string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.files[ref]
	if !ok {
		return nil, &core.ResourceError{Ref: ref}
	}
	return data, nil
}
