package fuzztests

import (
	"bytes"
	"context"
	"testing"

	"frkernel/internal/driver"
	"frkernel/internal/kernel"
	"frkernel/internal/store"
	"frkernel/internal/testkit"
)

func FuzzBundleCheck(f *testing.F) {
	addBundleSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		b, err := store.DecodeBundle(bytes.NewReader(input))
		if err != nil {
			return
		}
		k, err := b.Open(kernel.DefaultOptions())
		if err != nil {
			return
		}
		res := driver.Sequential(context.Background(), k, b.Decls, driver.Options{MaxDiagnostics: 64})
		if len(res.Status) != len(b.Decls) {
			t.Fatalf("%d outcomes for %d declarations", len(res.Status), len(b.Decls))
		}
		if err := testkit.CheckEnvInvariants(k.Arena(), k.Env()); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzBundleDigest(f *testing.F) {
	addBundleSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		b, err := store.DecodeBundle(bytes.NewReader(input))
		if err != nil {
			return
		}
		d1, err := b.Digest()
		if err != nil {
			t.Fatalf("decoded bundle does not re-encode: %v", err)
		}
		d2, _ := b.Digest()
		if d1 != d2 {
			t.Fatal("digest is not deterministic")
		}
	})
}
