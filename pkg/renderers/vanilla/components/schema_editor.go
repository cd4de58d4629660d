package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/render"
)

const (
	schemaEditorTemplate = templatePrefix + "schema_editor.tmpl"
	schemaEditorPartial  = "forms.schema-editor"
)

// EditorFieldID is the element id of the schema editor textarea.
const EditorFieldID = "schema-editor"

func schemaEditorComponent() Component {
	return Component{
		Name:    NameSchemaEditor,
		Render:  schemaEditorRenderer,
		Scripts: []Script{{Inline: schemaEditorInlineScript}},
	}
}

// schemaEditorRenderer draws the editor textarea. Config keys: "action" (form
// post target), "live_url" (websocket path, empty disables live edits),
// "apply" (button label) and "hidden" (hidden fields as name/value maps).
func schemaEditorRenderer(buf *bytes.Buffer, widget render.Widget, data ComponentData) error {
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", schemaEditorTemplate)
	}

	templateName := schemaEditorTemplate
	if data.Partials != nil {
		if candidate := strings.TrimSpace(data.Partials[schemaEditorPartial]); candidate != "" {
			templateName = candidate
		}
	}
	if widget.FieldID == "" {
		widget.FieldID = EditorFieldID
	}

	payload := map[string]any{
		"widget": WidgetData(widget),
		"config": data.Config,
		"rows":   editorRows(widget.Text),
	}
	rendered, err := data.Template.RenderTemplate(templateName, payload)
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", templateName, err)
	}
	buf.WriteString(rendered)
	return nil
}

func editorRows(text string) int {
	rows := strings.Count(text, "\n") + 2
	switch {
	case rows < 10:
		return 10
	case rows > 40:
		return 40
	default:
		return rows
	}
}

// schemaEditorInlineScript streams editor text over the live websocket and
// swaps the rendered fields when the server accepts the schema.
const schemaEditorInlineScript = `(function () {
  var root = document.querySelector('[data-dynform-editor]');
  if (!root || !window.WebSocket) return;
  var url = root.getAttribute('data-live-url');
  if (!url) return;
  var area = root.querySelector('textarea');
  var errorBox = root.querySelector('.error-message');
  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var socket = new WebSocket(scheme + location.host + url);
  var timer = null;
  area.addEventListener('input', function () {
    clearTimeout(timer);
    timer = setTimeout(function () {
      if (socket.readyState === 1) {
        socket.send(JSON.stringify({ type: 'edit', text: area.value }));
      }
    }, 200);
  });
  socket.addEventListener('message', function (event) {
    var msg = JSON.parse(event.data);
    if (msg.type !== 'schema') return;
    if (errorBox) errorBox.textContent = msg.error || '';
    if (!msg.ok) return;
    var fields = document.getElementById('dynform-fields');
    if (fields && typeof msg.html === 'string') fields.innerHTML = msg.html;
    var title = document.getElementById('dynform-title');
    if (title && typeof msg.title === 'string') title.textContent = msg.title;
    var description = document.getElementById('dynform-description');
    if (description && typeof msg.description === 'string') description.innerHTML = msg.description;
  });
})();`
