package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a conversion failure
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindFileNotFound   ErrorKind = "file_not_found"
	KindAuthentication ErrorKind = "authentication"
	KindPageRange      ErrorKind = "page_range"
	KindRender         ErrorKind = "render"
	KindIO             ErrorKind = "io"
	KindFileFormat     ErrorKind = "file_format"
)

// NoPage marks an Error that is not tied to a page
const NoPage = -1

// Error is the single error type surfaced by the resolver, the renderers and the orchestrator
type Error struct {
	Kind    ErrorKind
	Field   string // offending argument, validation errors only
	Page    int    // zero-based page index or NoPage
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Kind))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Page != NoPage {
		fmt.Fprintf(&b, " (page index %d)", e.Page)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error with no page attached
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Page:    NoPage,
		Message: message,
		Err:     err,
	}
}

func ValidationError(field, message string) *Error {
	e := NewError(KindValidation, message, nil)
	e.Field = field
	return e
}

func FileNotFoundError(path string, err error) *Error {
	e := NewError(KindFileNotFound, "input file not found", err)
	e.Path = path
	return e
}

func AuthenticationError(message string, err error) *Error {
	return NewError(KindAuthentication, message, err)
}

func PageRangeError(message string) *Error {
	return NewError(KindPageRange, message, nil)
}

// RenderError reports a failure of the rendering engine on one page
func RenderError(page int, err error) *Error {
	e := NewError(KindRender, "failed to render page", err)
	e.Page = page
	return e
}

func IOError(path, message string, err error) *Error {
	e := NewError(KindIO, message, err)
	e.Path = path
	return e
}

func FileFormatError(path string, err error) *Error {
	e := NewError(KindFileFormat, "unable to open PDF document", err)
	e.Path = path
	return e
}

// KindOf returns the kind of the first domain error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err wraps a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
