package fuzztests

import (
	"bytes"
	"testing"

	"frkernel/internal/kernel"
	"frkernel/internal/prelude"
	"frkernel/internal/store"
	"frkernel/internal/term"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// addBundleSeeds adds the encoded prelude plus variants with a rejected
// declaration and with damaged bytes.
func addBundleSeeds(f *testing.F) {
	a := term.NewArena()
	decls := prelude.Decls(a)
	f.Add(encode(f, store.NewBundle(a, decls, prelude.Nat)))

	bad := append(decls[:len(decls):len(decls)],
		kernel.AxiomDecl("notAType", a.Nat(3)),
		kernel.DefinitionDecl("loop", a.ConstNamed("loop"), a.ConstNamed("loop")))
	full := encode(f, store.NewBundle(a, bad, prelude.Nat))
	f.Add(full)
	f.Add(full[:len(full)/2])

	flipped := bytes.Clone(full)
	flipped[len(flipped)/3] ^= 0xff
	f.Add(flipped)
	f.Add([]byte{})
}

func encode(f *testing.F, b *store.Bundle) []byte {
	var buf bytes.Buffer
	if err := store.EncodeBundle(&buf, b); err != nil {
		f.Fatal(err)
	}
	return buf.Bytes()
}
