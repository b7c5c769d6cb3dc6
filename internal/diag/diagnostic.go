package diag

type Note struct {
	Decl string
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	// Index is the declaration's position in its input list, -1 when the
	// diagnostic concerns the run as a whole.
	Index    int
	Decl     string
	Message  string
	Expected string
	Inferred string
	Notes    []Note
}
