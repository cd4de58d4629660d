package components

// Canonical component names used by the vanilla renderer and default registry.
const (
	NameInput         = "input"
	NameTextarea      = "textarea"
	NameSelect        = "select"
	NameRadioGroup    = "radio_group"
	NameCheckboxGroup = "checkbox_group"
	NameFilePicker    = "file_picker"
	NameSchemaEditor  = "schema_editor"
)
