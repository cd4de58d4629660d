package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// renderOptions assembles the state, theme and CSRF field for a render of
// sess.
func (s *Server) renderOptions(sess *session.Session) render.RenderOptions {
	opts := sess.RenderOptions()
	if cfg, err := s.themes.Config("", sess.Variant()); err == nil {
		opts.Theme = cfg
	} else {
		s.logger.Warn("server: theme selection failed", "variant", sess.Variant(), "error", err)
	}
	opts.HiddenFields = render.MergeHiddenFields(nil, render.CSRFToken(sess.CSRFToken()))
	return opts
}

// handlePage renders the form page. "only" limits the fields shown and
// "fragment" returns the widgets without page chrome.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	opts := s.renderOptions(sess)
	opts.Notices = sess.Notices()
	opts.Subset = render.ParseFieldSubset(r.URL.Query().Get("only"))
	opts.Fragment = parseChecked(r.URL.Query().Get("fragment"))

	s.writePage(w, r, sess, opts)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, sess *session.Session, opts render.RenderOptions) {
	out, err := s.html.Render(r.Context(), sess.Store().Schema(), opts)
	if err != nil {
		s.logger.Error("server: render page", "error", err)
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.html.ContentType())
	w.Header().Set(CSRFHeader, sess.CSRFToken())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

type submitResponse struct {
	Accepted bool              `json:"accepted"`
	Errors   map[string]string `json:"errors,omitempty"`
	// Payload is set only for accepted submissions and is never null then,
	// so a form without fields answers with "payload": {}.
	Payload *model.Values `json:"payload,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	applyForm(sess.Store(), r)

	result, err := sess.Submit(r.Context())
	if err != nil {
		s.logger.Error("server: submit", "session", sess.ID(), "error", err)
		if wantsJSON(r) {
			writeError(w, http.StatusBadGateway, "submit_failed", err.Error())
			return
		}
		redirectHome(w, r)
		return
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if !result.Accepted {
			status = http.StatusUnprocessableEntity
		}
		reply := submitResponse{
			Accepted: result.Accepted,
			Errors:   render.VisibleErrors(sess.Store().Schema(), result.Errors),
		}
		if result.Accepted {
			payload := result.Payload
			if payload == nil {
				payload = model.Values{}
			}
			reply.Payload = &payload
		}
		writeJSON(w, status, reply)
		return
	}
	redirectHome(w, r)
}

type fieldResponse struct {
	Field string `json:"field"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// handleField applies one widget change event. HTML clients get the field
// re-rendered; everyone else gets the validation result.
func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	store := sess.Store()
	id := chi.URLParam(r, "id")

	field, ok := store.Schema().Field(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_field", "field not declared: "+id)
		return
	}

	widget := render.Dispatch(field, store.Value(id), "")
	msg, failed := store.SetValue(fieldEvent(widget, r))

	if wantsHTML(r) {
		opts := s.renderOptions(sess)
		opts.Fragment = true
		opts.Subset = render.FieldSubset{IDs: []string{id}}
		s.writePage(w, r, sess, opts)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Field: id, Valid: !failed, Error: msg})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var err error
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		err = sess.Import(r.Context(), fileio.SourceFromReader("", strings.NewReader("")))
	} else {
		err = sess.Import(r.Context(), fileio.SourceFromUpload(r.MultipartForm.File["file"][0]))
	}

	if wantsJSON(r) {
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid_schema", session.ErrorDetail(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "title": sess.Store().Schema().FormTitle})
		return
	}
	redirectHome(w, r)
}

// handleExport downloads the active schema. "format=yaml" switches the
// default name to formSchema.yaml; an explicit "name" wins.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	query := r.URL.Query()

	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		name = fileio.DefaultExportName
		if strings.EqualFold(query.Get("format"), string(schema.FormatYAML)) {
			name = strings.TrimSuffix(name, ".json") + schema.FormatYAML.Extension()
		}
	}

	if err := sess.ExportTo(r.Context(), fileio.HTTPAttachment(w), name); err != nil {
		s.logger.Error("server: export", "session", sess.ID(), "error", err)
		http.Error(w, "failed to export schema", http.StatusInternalServerError)
	}
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	err := sess.Store().EditSchemaText(r.PostFormValue("schema"))

	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"ok": false, "error": session.ErrorDetail(err)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	variant := strings.ToLower(strings.TrimSpace(r.PostFormValue("variant")))
	if variant != render.VariantLight && variant != render.VariantDark {
		writeError(w, http.StatusBadRequest, "invalid_variant", "unknown theme variant: "+variant)
		return
	}
	sess.SetVariant(variant)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"variant": variant})
		return
	}
	redirectHome(w, r)
}

type catalogEntry struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Fields int    `json:"fields"`
	Valid  bool   `json:"valid"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	entries := make([]catalogEntry, 0, s.catalog.Len())
	for _, name := range s.catalog.Names() {
		entry, _ := s.catalog.Get(name)
		entries = append(entries, catalogEntry{
			Name:   name,
			Title:  entry.Schema.FormTitle,
			Fields: len(entry.Schema.Fields),
			Valid:  entry.Lint.Valid,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": entries})
}

// handleCatalogLoad imports a catalog schema into the session the same way
// an uploaded file would be.
func (s *Server) handleCatalogLoad(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	name := chi.URLParam(r, "name")

	entry, ok := s.catalog.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_schema", "schema not in catalog: "+name)
		return
	}

	src := fileio.SourceFromReader(entry.Path, strings.NewReader(entry.Document.Text()))
	if err := sess.Import(r.Context(), src); err != nil {
		s.logger.Error("server: load catalog schema", "session", sess.ID(), "schema", name, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "invalid_schema", session.ErrorDetail(err))
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "title": sess.Store().Schema().FormTitle})
		return
	}
	redirectHome(w, r)
}
