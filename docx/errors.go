package docx

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match them through errors.Is.
var (
	ErrCorruptContainer   = errors.New("docx: corrupt container")
	ErrMissingPart        = errors.New("docx: missing part")
	ErrMalformedPart      = errors.New("docx: malformed part")
	ErrReferenceIntegrity = errors.New("docx: unresolved reference")
)

// CorruptContainerError reports a file that cannot be opened as a
// WordprocessingML zip container.
type CorruptContainerError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptContainerError) Error() string {
	msg := "docx: corrupt container " + e.Path
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptContainerError) Unwrap() error { return e.Err }

func (e *CorruptContainerError) Is(target error) bool { return target == ErrCorruptContainer }

// MissingPartError names a required part absent from the container.
type MissingPartError struct {
	Part string
}

func (e *MissingPartError) Error() string {
	return fmt.Sprintf("docx: missing required part %s", e.Part)
}

func (e *MissingPartError) Is(target error) bool { return target == ErrMissingPart }

// MalformedPartError names a part whose markup could not be parsed.
type MalformedPartError struct {
	Part string
	Err  error
}

func (e *MalformedPartError) Error() string {
	return fmt.Sprintf("docx: malformed part %s: %v", e.Part, e.Err)
}

func (e *MalformedPartError) Unwrap() error { return e.Err }

func (e *MalformedPartError) Is(target error) bool { return target == ErrMalformedPart }

// ReferenceKind identifies what kind of cross-reference failed to resolve.
type ReferenceKind string

const (
	RefParagraphStyle ReferenceKind = "paragraph style"
	RefCharacterStyle ReferenceKind = "character style"
	RefTableStyle     ReferenceKind = "table style"
	RefBaseStyle      ReferenceKind = "base style"
	RefNumbering      ReferenceKind = "numbering"
	RefAbstractNum    ReferenceKind = "abstract numbering"
	RefHyperlink      ReferenceKind = "hyperlink relationship"
	RefImage          ReferenceKind = "image relationship"
)

// ReferenceIntegrityError reports an ID that does not resolve to a
// definition. Model construction stops at the first one.
type ReferenceIntegrityError struct {
	Kind ReferenceKind
	ID   string
	// From describes where the reference was found, e.g. "style Heading1"
	// or "section 0, block 3".
	From string
}

func (e *ReferenceIntegrityError) Error() string {
	msg := fmt.Sprintf("docx: unresolved %s %q", e.Kind, e.ID)
	if e.From != "" {
		msg += " in " + e.From
	}
	return msg
}

func (e *ReferenceIntegrityError) Is(target error) bool { return target == ErrReferenceIntegrity }
