// Package store persists declaration bundles and checked environments.
//
// A bundle is what an external elaborator hands the checker: an arena
// snapshot plus the declarations whose terms live in it. A snapshot is what
// the checker leaves behind: the arena after checking, the committed
// entries and the diagnostics of the run. Both are msgpack with a schema
// version; files are written to a temp file and renamed into place.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"frkernel/internal/kernel"
	"frkernel/internal/term"
)

// SchemaVersion changes whenever Bundle or Snapshot change shape.
const SchemaVersion uint16 = 1

var ErrSchema = errors.New("store: schema version mismatch")

// Digest identifies a bundle's content.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

type Bundle struct {
	Schema   uint16        `msgpack:"schema"`
	Naturals string        `msgpack:"naturals"`
	Arena    term.Snapshot `msgpack:"arena"`
	Decls    []kernel.Decl `msgpack:"decls"`
}

// NewBundle captures decls together with the arena their terms live in.
func NewBundle(a *term.Arena, decls []kernel.Decl, naturals string) *Bundle {
	return &Bundle{
		Schema:   SchemaVersion,
		Naturals: naturals,
		Arena:    a.Snapshot(),
		Decls:    decls,
	}
}

// EffectiveOptions returns opts as Open applies them: a bundle that names
// its naturals overrides opts.Naturals.
func (b *Bundle) EffectiveOptions(opts kernel.Options) kernel.Options {
	if b.Naturals != "" {
		opts.Naturals = b.Naturals
	}
	return opts
}

// Open restores the bundle's arena and returns a fresh kernel over it,
// configured by EffectiveOptions.
func (b *Bundle) Open(opts kernel.Options) (*kernel.Kernel, error) {
	a, err := term.Restore(b.Arena)
	if err != nil {
		return nil, fmt.Errorf("bundle arena: %w", err)
	}
	for i, d := range b.Decls {
		for _, t := range d.Terms() {
			if _, ok := a.Lookup(t); !ok {
				return nil, fmt.Errorf("declaration %d (%s) references term %d outside the arena", i, d.Name, t)
			}
		}
	}
	return kernel.NewWithArena(a, b.EffectiveOptions(opts)), nil
}

// Digest hashes the bundle's encoding.
func (b *Bundle) Digest() (Digest, error) {
	var buf bytes.Buffer
	if err := EncodeBundle(&buf, b); err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

func EncodeBundle(w io.Writer, b *Bundle) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(b)
}

func DecodeBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: bundle has %d, want %d", ErrSchema, b.Schema, SchemaVersion)
	}
	return &b, nil
}

func WriteBundle(path string, b *Bundle) error {
	return writeAtomic(path, func(w io.Writer) error { return EncodeBundle(w, b) })
}

func ReadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBundle(f)
}

// writeAtomic writes through a temp file in path's directory and renames
// it into place.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
