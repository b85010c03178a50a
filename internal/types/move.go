package types

// MoveNoteParams contains parameters for moving a note.
type MoveNoteParams struct {
	OldPath   string `json:"oldPath"`
	NewPath   string `json:"newPath"`
	Overwrite bool   `json:"overwrite,omitempty"`
}
