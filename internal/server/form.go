package server

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/state"
)

// applyForm replays a full form post into the store as widget change
// events. Fields missing from the post keep their value, except checkbox
// groups, whose hidden companion input always posts. File inputs only change
// when a file was chosen.
func applyForm(store *state.Store, r *http.Request) {
	form := store.Schema()
	for _, field := range form.Fields {
		w := render.Dispatch(field, store.Value(field.ID), "")
		switch w.Kind {
		case render.WidgetCheckboxGroup:
			posted, ok := r.PostForm[field.ID]
			if !ok {
				continue
			}
			for _, evt := range checkboxEvents(w, posted) {
				store.SetValue(evt)
			}
		case render.WidgetFilePicker:
			if ref, ok := uploadedFile(r, field.ID); ok {
				store.SetValue(w.Event("", false, ref))
			}
		default:
			posted, ok := r.PostForm[field.ID]
			if !ok {
				continue
			}
			value := ""
			if len(posted) > 0 {
				value = posted[0]
			}
			store.SetValue(w.Event(value, false))
		}
	}
}

// checkboxEvents diffs the posted members against the widget's current
// choices. The empty value from the hidden companion input is ignored.
func checkboxEvents(w render.Widget, posted []string) []model.ChangeEvent {
	want := make(map[string]bool, len(posted))
	for _, value := range posted {
		if value != "" {
			want[value] = true
		}
	}
	var events []model.ChangeEvent
	for _, choice := range w.Choices {
		if want[choice.Value] != choice.Selected {
			events = append(events, w.Event(choice.Value, want[choice.Value]))
		}
	}
	return events
}

func uploadedFile(r *http.Request, name string) (model.FileRef, bool) {
	if r.MultipartForm == nil {
		return model.FileRef{}, false
	}
	headers := r.MultipartForm.File[name]
	if len(headers) == 0 || strings.TrimSpace(headers[0].Filename) == "" {
		return model.FileRef{}, false
	}
	return fileRef(headers[0]), true
}

func fileRef(header *multipart.FileHeader) model.FileRef {
	return model.FileRef{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
}

// fieldEvent builds the single event posted to /fields/{id}: "value" is the
// typed text or toggled option, "checked" the new checkbox state and "file"
// (or the field id) an uploaded file.
func fieldEvent(w render.Widget, r *http.Request) model.ChangeEvent {
	switch w.Kind {
	case render.WidgetCheckboxGroup:
		return w.Event(r.PostFormValue("value"), parseChecked(r.PostFormValue("checked")))
	case render.WidgetFilePicker:
		if ref, ok := uploadedFile(r, "file"); ok {
			return w.Event("", false, ref)
		}
		if ref, ok := uploadedFile(r, w.FieldID); ok {
			return w.Event("", false, ref)
		}
		return w.Event("", false)
	default:
		return w.Event(r.PostFormValue("value"), false)
	}
}

func parseChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
