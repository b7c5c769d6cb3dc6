package diag

import (
	"errors"

	"frkernel/internal/kerr"
)

func New(sev Severity, code Code, index int, decl, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Index:    index,
		Decl:     decl,
		Message:  msg,
	}
}

func NewError(code Code, index int, decl, msg string) Diagnostic {
	return New(SevError, code, index, decl, msg)
}

// FromError turns a declaration failure into a diagnostic. Kernel errors
// keep their kind and rendered types; anything else is KerInternal.
func FromError(index int, decl string, err error) Diagnostic {
	var ke *kerr.Error
	if !errors.As(err, &ke) {
		return NewError(KerInternal, index, decl, err.Error())
	}
	if ke.Decl != "" {
		decl = ke.Decl
	}
	d := NewError(CodeFor(ke.Kind), index, decl, ke.Message)
	d.Expected = ke.ExpectedText
	d.Inferred = ke.InferredText
	return d
}

func (d Diagnostic) WithNote(decl, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Decl: decl, Msg: msg})
	return d
}
