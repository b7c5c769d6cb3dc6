// Package kerr defines the kernel's failure taxonomy.
//
// Every kernel operation returns either nil or a *Error. The error names the
// declaration being processed and the kind of failure; type mismatches also
// carry the expected and inferred terms, both as arena IDs and as rendered
// text so the error stays readable after the arena is gone.
package kerr

import (
	"errors"
	"fmt"

	"frkernel/internal/term"
)

// Kind classifies kernel failures.
type Kind uint8

const (
	Unknown Kind = iota
	UnboundVariable
	DuplicateName
	PositivityViolation
	MalformedIndices
	NotAFunctionType
	TypeMismatch
	UniverseError
	UnknownConstructor
	UnknownInductive
)

func (k Kind) String() string {
	switch k {
	case UnboundVariable:
		return "UnboundVariable"
	case DuplicateName:
		return "DuplicateName"
	case PositivityViolation:
		return "PositivityViolation"
	case MalformedIndices:
		return "MalformedIndices"
	case NotAFunctionType:
		return "NotAFunctionType"
	case TypeMismatch:
		return "TypeMismatch"
	case UniverseError:
		return "UniverseError"
	case UnknownConstructor:
		return "UnknownConstructor"
	case UnknownInductive:
		return "UnknownInductive"
	default:
		return "Unknown"
	}
}

// Kinds lists every concrete kind, in declaration order.
func Kinds() []Kind {
	return []Kind{
		UnboundVariable, DuplicateName, PositivityViolation, MalformedIndices,
		NotAFunctionType, TypeMismatch, UniverseError, UnknownConstructor, UnknownInductive,
	}
}

// Error is the single error type produced by the kernel.
type Error struct {
	Kind    Kind
	Decl    string // declaration being processed, set by the kernel
	Message string

	// Populated for TypeMismatch and some UniverseErrors.
	Expected     term.ID
	Inferred     term.ID
	ExpectedText string
	InferredText string
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Decl != "" {
		prefix = fmt.Sprintf("%s in %q", prefix, e.Decl)
	}
	if e.ExpectedText != "" || e.InferredText != "" {
		return fmt.Sprintf("%s: %s (expected %s, inferred %s)", prefix, e.Message, e.ExpectedText, e.InferredText)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// works alongside the Is helper below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && (other.Decl == "" || other.Decl == e.Decl)
}

// New creates an error of kind k with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Mismatch creates a TypeMismatch between expected and inferred, rendering
// both in ctx.
func Mismatch(a *term.Arena, ctx *term.Context, expected, inferred term.ID, format string, args ...any) *Error {
	return mismatch(TypeMismatch, a, ctx, expected, inferred, format, args...)
}

// UniverseMismatch is a mismatch between two sorts.
func UniverseMismatch(a *term.Arena, ctx *term.Context, expected, inferred term.ID, format string, args ...any) *Error {
	return mismatch(UniverseError, a, ctx, expected, inferred, format, args...)
}

func mismatch(k Kind, a *term.Arena, ctx *term.Context, expected, inferred term.ID, format string, args ...any) *Error {
	return &Error{
		Kind:         k,
		Message:      fmt.Sprintf(format, args...),
		Expected:     expected,
		Inferred:     inferred,
		ExpectedText: term.Format(a, ctx, expected),
		InferredText: term.Format(a, ctx, inferred),
	}
}

// KindOf returns the kind of a kernel error, Unknown for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is a kernel error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// WithDecl stamps the declaration name on a kernel error that has none.
// Other errors are wrapped as Unknown kernel errors.
func WithDecl(err error, decl string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Decl == "" {
			e.Decl = decl
		}
		return e
	}
	return &Error{Kind: Unknown, Decl: decl, Message: err.Error()}
}
