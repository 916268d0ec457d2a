package docx

import "fmt"

// StructureError represents a .docx archive that cannot be read or written, such as one missing
// its main document part.
type StructureError struct {
	Message string
	Cause   error
}

func (e *StructureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document structure error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("document structure error: %s", e.Message)
}

func (e *StructureError) Unwrap() error {
	return e.Cause
}
