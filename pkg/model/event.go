package model

// ChangeEvent is emitted by a widget on user interaction. RawValue holds the
// typed text, the chosen option or, for checkbox groups, the toggled option;
// Checked carries the new checkbox state. File pickers report their selection
// in Files and only the first entry is kept.
type ChangeEvent struct {
	FieldID  string    `json:"fieldId"`
	Type     FieldType `json:"type,omitempty"`
	RawValue string    `json:"value"`
	Checked  bool      `json:"checked,omitempty"`
	Files    []FileRef `json:"files,omitempty"`
}
