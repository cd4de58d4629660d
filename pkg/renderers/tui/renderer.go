package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/state"
)

// Renderer implements render.Renderer for terminal sessions. Each field is
// asked in order until it validates; the answers go through a state.Store
// exactly as widget change events would, and the accepted payload is the
// render output.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	styles       Styles
	storeOptions []state.Option
	logger       *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(Stdio{}),
		outputFormat: OutputFormatJSON,
		styles:       DefaultStyles(),
		logger:       slog.Default(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field, then submits. Options.Values pre-fill the
// answers and options.Subset limits the prompted, and submitted, fields.
// ErrRejected is returned when some field cannot be answered validly.
func (r *Renderer) Render(ctx context.Context, form model.FormSchema, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema := form.Clone()
	render.LocalizeSchema(&schema, opts)
	render.ApplySubset(&schema, opts.Subset)

	storeOpts := append([]state.Option{state.WithLogger(r.logger)}, r.storeOptions...)
	store := state.New(schema, storeOpts...)
	prefill(store, schema, opts.Values)

	if err := r.intro(ctx, schema, opts); err != nil {
		return nil, err
	}

	pending := schema.Fields
	for {
		for _, field := range pending {
			if err := r.promptField(ctx, store, field, opts); err != nil {
				return nil, err
			}
		}

		result, err := store.Submit(ctx)
		if err != nil {
			return nil, err
		}
		if result.Accepted {
			payload, err := r.serialize(schema, result.Payload)
			if err != nil {
				return nil, err
			}
			if data, err := json.MarshalIndent(result.Payload, "", "  "); err == nil {
				_ = r.driver.Info(ctx, r.styles.Notice.Render(opts.Message(render.MsgSubmitAccepted, string(data))))
			}
			return payload, nil
		}

		pending = answerable(schema, result.Errors)
		for _, field := range schema.Fields {
			if msg, ok := result.Errors[field.ID]; ok {
				_ = r.driver.Info(ctx, r.styles.Error.Render(fmt.Sprintf("%s: %s", field.Label, msg)))
			}
		}
		if len(pending) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrRejected, joinErrors(schema, result.Errors))
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Fix the fields above?", Default: true})
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, fmt.Errorf("%w: %s", ErrRejected, joinErrors(schema, result.Errors))
		}
	}
}

func (r *Renderer) intro(ctx context.Context, schema model.FormSchema, opts render.RenderOptions) error {
	if title := strings.TrimSpace(schema.FormTitle); title != "" {
		if err := r.driver.Info(ctx, r.styles.Title.Render(title)); err != nil {
			return err
		}
	}
	if desc := strings.TrimSpace(schema.FormDescription); desc != "" {
		if err := r.driver.Info(ctx, r.styles.Description.Render(desc)); err != nil {
			return err
		}
	}
	for _, notice := range opts.Notices {
		style := r.styles.Notice
		if notice.Level == render.NoticeError {
			style = r.styles.Error
		}
		if err := r.driver.Info(ctx, style.Render(notice.Message)); err != nil {
			return err
		}
	}
	return nil
}

// promptField asks for one field until the store accepts its value.
func (r *Renderer) promptField(ctx context.Context, store *state.Store, field model.FieldDescriptor, opts render.RenderOptions) error {
	for {
		msg, _ := store.Error(field.ID)
		widget := render.Dispatch(field, store.Value(field.ID), msg)

		events, err := r.ask(ctx, widget, opts)
		if err != nil {
			return err
		}
		if events == nil {
			// choice group without options; nothing can be answered
			return nil
		}

		failed := false
		msg = ""
		if len(events) == 0 {
			msg, failed = store.ValidateField(field.ID)
		}
		for _, evt := range events {
			msg, failed = store.SetValue(evt)
		}
		if !failed {
			return nil
		}
		if err := r.driver.Info(ctx, r.styles.Error.Render(msg)); err != nil {
			return err
		}
	}
}

// ask runs the prompt matching the widget kind and returns the change events
// the answer produces. A nil slice means the widget offered nothing to pick.
func (r *Renderer) ask(ctx context.Context, w render.Widget, opts render.RenderOptions) ([]model.ChangeEvent, error) {
	label := w.DisplayLabel()

	switch w.Kind {
	case render.WidgetTextArea:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: w.Text, Help: w.Placeholder})
		if err != nil {
			return nil, err
		}
		return []model.ChangeEvent{w.Event(text, false)}, nil

	case render.WidgetSelect:
		labels := choiceLabels(w.Choices)
		labels[0] = opts.Message(render.MsgSelect)
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: selectedIndex(w.Choices)})
		if err != nil {
			return nil, err
		}
		value := ""
		if idx >= 0 && idx < len(w.Choices) {
			value = w.Choices[idx].Value
		}
		return []model.ChangeEvent{w.Event(value, false)}, nil

	case render.WidgetRadioGroup:
		if len(w.Choices) == 0 {
			return nil, r.noOptions(ctx, label, opts)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: choiceLabels(w.Choices), DefaultIndex: selectedIndex(w.Choices)})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(w.Choices) {
			return []model.ChangeEvent{}, nil
		}
		return []model.ChangeEvent{w.Event(w.Choices[idx].Value, false)}, nil

	case render.WidgetCheckboxGroup:
		if len(w.Choices) == 0 {
			return nil, r.noOptions(ctx, label, opts)
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: choiceLabels(w.Choices), Defaults: selectedIndices(w.Choices)})
		if err != nil {
			return nil, err
		}
		return toggleEvents(w, picked), nil

	case render.WidgetFilePicker:
		path, err := r.driver.Input(ctx, InputConfig{Message: label, Default: fileDefault(w), Help: "Path to a file; leave empty for none."})
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return []model.ChangeEvent{w.Event("", false)}, nil
		}
		if w.File != nil && path == w.File.Name {
			return []model.ChangeEvent{w.Event("", false, *w.File)}, nil
		}
		ref, err := describeFile(path)
		if err != nil {
			if infoErr := r.driver.Info(ctx, r.styles.Error.Render(err.Error())); infoErr != nil {
				return nil, infoErr
			}
			return r.ask(ctx, w, opts)
		}
		return []model.ChangeEvent{w.Event("", false, ref)}, nil

	default:
		cfg := InputConfig{Message: label, Default: w.Text, Placeholder: w.Placeholder}
		var (
			text string
			err  error
		)
		if w.InputType == string(model.FieldTypePassword) {
			text, err = r.driver.Password(ctx, cfg)
		} else {
			text, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return nil, err
		}
		return []model.ChangeEvent{w.Event(text, false)}, nil
	}
}

func (r *Renderer) noOptions(ctx context.Context, label string, opts render.RenderOptions) error {
	return r.driver.Info(ctx, r.styles.Description.Render(fmt.Sprintf("%s: %s", label, opts.Message(render.MsgNoOptions))))
}

func (r *Renderer) serialize(schema model.FormSchema, values model.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(schema, values)), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

// prefill replays initial values through the store so they are validated
// like typed answers. Undeclared ids are skipped.
func prefill(store *state.Store, schema model.FormSchema, values model.Values) {
	for _, field := range schema.Fields {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		w := render.Dispatch(field, model.None(), "")
		switch value.Kind() {
		case model.KindSet:
			for _, member := range value.Members() {
				store.SetValue(w.Event(member, true))
			}
		case model.KindFile:
			ref, _ := value.FileRef()
			store.SetValue(w.Event("", false, ref))
		case model.KindText:
			text, _ := value.AsText()
			store.SetValue(w.Event(text, false))
		}
	}
}

// answerable lists the failing fields a prompt can change.
func answerable(schema model.FormSchema, errs map[string]string) []model.FieldDescriptor {
	var out []model.FieldDescriptor
	for _, field := range schema.Fields {
		if _, failed := errs[field.ID]; !failed {
			continue
		}
		kind := field.Type.Normalize()
		if (kind == model.FieldTypeRadio || kind == model.FieldTypeCheckbox) && len(field.Options) == 0 {
			continue
		}
		out = append(out, field)
	}
	return out
}

func joinErrors(schema model.FormSchema, errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for _, field := range schema.Fields {
		if msg, ok := errs[field.ID]; ok {
			parts = append(parts, field.ID+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func choiceLabels(choices []render.Choice) []string {
	out := make([]string, 0, len(choices))
	for _, choice := range choices {
		out = append(out, choice.Label)
	}
	return out
}

func selectedIndex(choices []render.Choice) int {
	for i, choice := range choices {
		if choice.Selected {
			return i
		}
	}
	return -1
}

func selectedIndices(choices []render.Choice) []int {
	var out []int
	for i, choice := range choices {
		if choice.Selected {
			out = append(out, i)
		}
	}
	return out
}

// toggleEvents turns a multi-select answer into one event per option whose
// checked state changed. An unchanged answer yields an empty slice.
func toggleEvents(w render.Widget, picked []int) []model.ChangeEvent {
	want := make(map[int]bool, len(picked))
	for _, idx := range picked {
		want[idx] = true
	}
	events := []model.ChangeEvent{}
	for i, choice := range w.Choices {
		if want[i] != choice.Selected {
			events = append(events, w.Event(choice.Value, want[i]))
		}
	}
	return events
}

func fileDefault(w render.Widget) string {
	if w.File == nil {
		return ""
	}
	return w.File.Name
}

func flattenForm(values model.Values) string {
	out := url.Values{}
	for id, value := range values {
		switch value.Kind() {
		case model.KindSet:
			for _, member := range value.Members() {
				out.Add(id, member)
			}
		default:
			out.Set(id, value.String())
		}
	}
	return out.Encode()
}

// prettyPrint lists declared fields in schema order, then any extra ids
// sorted.
func prettyPrint(schema model.FormSchema, values model.Values) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		seen[field.ID] = struct{}{}
		if value, ok := values[field.ID]; ok {
			fmt.Fprintf(&b, "%s=%s\n", field.ID, value.String())
		}
	}
	extra := make([]string, 0)
	for id := range values {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		fmt.Fprintf(&b, "%s=%s\n", id, values[id].String())
	}
	return b.String()
}
