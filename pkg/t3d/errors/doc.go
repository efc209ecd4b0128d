// Package errors provides the error taxonomy for T3D imports.
//
// Every recoverable problem found while importing is recorded as an *Error
// in an ErrorList owned by the import run, logged, and surfaced in the
// end-of-run report. Only a missing mandatory document aborts a run.
//
// # Error Types
//
// ErrorTypeStructural: a header or required field is missing. Aborts the
// current object, the parent loop continues.
//
// ErrorTypeUnknownKind: an unrecognized nested block or expression class.
// The block is skipped.
//
// ErrorTypeUnresolved: a reference that was never resolved by the end of
// the run.
//
// ErrorTypeUnsupported: a recognized legacy construct the importer cannot
// translate. The user has to fix it manually.
//
// ErrorTypeIO: a missing or unreadable source document. Aborts only that
// document.
//
// # Basic Usage
//
//	list := errors.NewErrorList()
//	list.Add(errors.Structural("missing Name= in header").At("Materials/M_Rock.T3D", 1))
//
//	for _, e := range list.ByType(errors.ErrorTypeUnsupported) {
//	    fmt.Println(e)
//	}
package errors
