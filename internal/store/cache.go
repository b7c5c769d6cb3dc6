package store

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"frkernel/internal/diag"
	"frkernel/internal/env"
	"frkernel/internal/kernel"
	"frkernel/internal/term"
)

// CheckKey names one check run: the bundle and the options that shape its
// verdict and its diagnostics.
type CheckKey struct {
	Bundle         Digest `msgpack:"bundle"`
	Naturals       string `msgpack:"naturals"`
	MaxDiagnostics int    `msgpack:"max_diagnostics"`
	Timings        bool   `msgpack:"timings"`
}

// Digest hashes the key; runs differing in any field get different digests.
func (k CheckKey) Digest() (Digest, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&k); err != nil {
		return Digest{}, fmt.Errorf("encode check key: %w", err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// Snapshot is the checked state one check run produced.
type Snapshot struct {
	Schema      uint16            `msgpack:"schema"`
	Key         Digest            `msgpack:"key"`
	Arena       term.Snapshot     `msgpack:"arena"`
	Entries     []*env.Entry      `msgpack:"entries"`
	Numerals    *env.Numerals     `msgpack:"numerals,omitempty"`
	Diagnostics []diag.Diagnostic `msgpack:"diagnostics"`
}

// Capture records k's state after the check run with digest key.
func Capture(key Digest, k *kernel.Kernel, diags []diag.Diagnostic) *Snapshot {
	s := &Snapshot{
		Schema:      SchemaVersion,
		Key:         key,
		Arena:       k.Arena().Snapshot(),
		Entries:     k.Env().Entries(),
		Diagnostics: diags,
	}
	if n, ok := k.Env().Numerals(); ok {
		s.Numerals = &n
	}
	return s
}

// Restore rebuilds the kernel the snapshot was captured from.
func (s *Snapshot) Restore(opts kernel.Options) (*kernel.Kernel, error) {
	a, err := term.Restore(s.Arena)
	if err != nil {
		return nil, fmt.Errorf("snapshot arena: %w", err)
	}
	e, err := env.Restore(a.Names(), s.Entries, s.Numerals)
	if err != nil {
		return nil, fmt.Errorf("snapshot environment: %w", err)
	}
	return kernel.NewWithEnv(a, e, opts), nil
}

// DiskCache keeps snapshots keyed by CheckKey digest. Safe for concurrent
// use within one process.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens dir, or $XDG_CACHE_HOME/frk (~/.cache/frk) when dir
// is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "frk")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "env", key.String()+".mp")
}

func (c *DiskCache) Put(key Digest, s *Snapshot) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeAtomic(c.pathFor(key), func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(s)
	})
}

// Get loads the snapshot for key. A missing entry is (false, nil); an
// entry of another schema or for another run returns ErrSchema or
// ErrStale.
func (c *DiskCache) Get(key Digest, out *Snapshot) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	if out.Schema != SchemaVersion {
		return false, fmt.Errorf("%w: snapshot has %d, want %d", ErrSchema, out.Schema, SchemaVersion)
	}
	if out.Key != key {
		return false, fmt.Errorf("%w: %s holds %s", ErrStale, key, out.Key)
	}
	return true, nil
}

var ErrStale = errors.New("store: cache entry belongs to another check run")

// DropAll removes every cached snapshot.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := filepath.Join(c.dir, "env")
	old := sub + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(sub, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
