package diag

import (
	"fmt"

	"frkernel/internal/kerr"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Kernel rejections, one per failure kind.
	KerInfo                Code = 4000
	KerUnboundVariable     Code = 4001
	KerDuplicateName       Code = 4002
	KerPositivityViolation Code = 4003
	KerMalformedIndices    Code = 4004
	KerNotAFunctionType    Code = 4005
	KerTypeMismatch        Code = 4006
	KerUniverseError       Code = 4007
	KerUnknownConstructor  Code = 4008
	KerUnknownInductive    Code = 4009
	KerInternal            Code = 4099

	// Driver decisions.
	DrvInfo      Code = 5000
	DrvSkipped   Code = 5001
	DrvCancelled Code = 5002

	// Bundle and cache IO.
	IOLoadBundle Code = 6001
	IOCacheRead  Code = 6002
	IOCacheWrite Code = 6003
	IOCacheStale Code = 6004

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	KerInfo:                "Kernel information",
	KerUnboundVariable:     "Unbound variable",
	KerDuplicateName:       "Name is already declared",
	KerPositivityViolation: "Inductive occurs in a non-positive position",
	KerMalformedIndices:    "Constructor result does not fit the inductive",
	KerNotAFunctionType:    "Applying a term that is not a function",
	KerTypeMismatch:        "Type mismatch",
	KerUniverseError:       "Universe error",
	KerUnknownConstructor:  "Unknown constructor",
	KerUnknownInductive:    "Unknown inductive type",
	KerInternal:            "Kernel failure without a kind",
	DrvInfo:                "Driver information",
	DrvSkipped:             "Declaration skipped because a dependency failed",
	DrvCancelled:           "Declaration not checked before cancellation",
	IOLoadBundle:           "Cannot load declaration bundle",
	IOCacheRead:            "Cannot read environment cache",
	IOCacheWrite:           "Cannot write environment cache",
	IOCacheStale:           "Environment cache entry is stale",
	ObsInfo:                "Observability information",
	ObsTimings:             "Declaration timings",
}

var kindCodes = map[kerr.Kind]Code{
	kerr.UnboundVariable:     KerUnboundVariable,
	kerr.DuplicateName:       KerDuplicateName,
	kerr.PositivityViolation: KerPositivityViolation,
	kerr.MalformedIndices:    KerMalformedIndices,
	kerr.NotAFunctionType:    KerNotAFunctionType,
	kerr.TypeMismatch:        KerTypeMismatch,
	kerr.UniverseError:       KerUniverseError,
	kerr.UnknownConstructor:  KerUnknownConstructor,
	kerr.UnknownInductive:    KerUnknownInductive,
}

// CodeFor maps a kernel failure kind to its code.
func CodeFor(k kerr.Kind) Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return KerInternal
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("KER%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DRV%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
