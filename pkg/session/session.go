package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/state"
)

// ErrNoDownloader is returned by Export when no downloader is configured.
var ErrNoDownloader = errors.New("session: downloader not configured")

// Notifier receives notices as they are raised.
type Notifier interface {
	Notify(ctx context.Context, notice render.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice render.Notice)

func (f NotifierFunc) Notify(ctx context.Context, notice render.Notice) {
	f(ctx, notice)
}

// Session is one user's form: a store plus the file surface and the notices
// raised by imports and submissions that the user has not seen yet.
type Session struct {
	mu sync.Mutex

	id           string
	token        string
	store        *state.Store
	reader       *fileio.Reader
	downloader   fileio.Downloader
	notifier     Notifier
	storeOptions []state.Option
	logger       *slog.Logger
	messages     render.RenderOptions

	variant    string
	notices    []render.Notice
	created    time.Time
	lastActive time.Time
}

// New creates a session whose store starts from initial.
func New(initial model.FormSchema, opts ...Option) *Session {
	now := time.Now()
	s := &Session{
		id:         uuid.NewString(),
		token:      uuid.NewString(),
		reader:     fileio.NewReader(),
		logger:     slog.Default(),
		variant:    render.VariantLight,
		created:    now,
		lastActive: now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With("session", s.id)
	storeOpts := append([]state.Option{state.WithLogger(s.logger)}, s.storeOptions...)
	s.store = state.New(initial, storeOpts...)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// CSRFToken returns the token form posts must echo back.
func (s *Session) CSRFToken() string {
	return s.token
}

// Store exposes the form store.
func (s *Session) Store() *state.Store {
	return s.store
}

// Variant returns the selected theme variant.
func (s *Session) Variant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// SetVariant selects the theme variant; empty keeps the current one.
func (s *Session) SetVariant(variant string) {
	if variant == "" {
		return
	}
	s.mu.Lock()
	s.variant = variant
	s.mu.Unlock()
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// CreatedAt reports when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.created
}

// IdleFor reports how long the session has gone unused.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// Notify queues a notice and forwards it to the notifier, if any.
func (s *Session) Notify(ctx context.Context, level render.NoticeLevel, message string) {
	notice := render.Notice{Level: level, Message: message}
	s.mu.Lock()
	s.notices = append(s.notices, notice)
	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.Notify(ctx, notice)
	}
}

// Notices returns the queued notices and clears the queue; each notice is
// shown once.
func (s *Session) Notices() []render.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Import reads src and makes the schema it holds the active one. JSON or
// YAML is picked from the source name. On any failure the store is left as
// it was and an error notice is raised; the error is also returned.
func (s *Session) Import(ctx context.Context, src fileio.Source) error {
	text, err := s.readSource(ctx, src)
	if err != nil {
		s.importFailed(ctx, err)
		return err
	}

	name := ""
	if src != nil {
		name = src.Location()
	}
	form, err := schema.Decode(name, []byte(text))
	if err != nil {
		s.importFailed(ctx, err)
		return err
	}

	s.store.SetSchema(form)
	s.logger.Info("session: schema imported", "source", name, "fields", len(form.Fields))
	s.Notify(ctx, render.NoticeInfo, s.messages.Message(render.MsgImportOK))
	return nil
}

// readSource waits for the asynchronous read of src. A done ctx releases the
// caller even while the source itself is still blocked; the read goroutine
// finishes on its own once the source returns.
func (s *Session) readSource(ctx context.Context, src fileio.Source) (string, error) {
	select {
	case res := <-s.reader.ReadTextAsync(ctx, src):
		return res.Text, res.Err
	case <-ctx.Done():
		readErr := &fileio.ReadError{Err: ctx.Err()}
		if src != nil {
			readErr.Kind, readErr.Location = src.Kind(), src.Location()
		}
		return "", readErr
	}
}

func (s *Session) importFailed(ctx context.Context, err error) {
	s.logger.Warn("session: schema import failed", "error", err)
	s.Notify(ctx, render.NoticeError, fmt.Sprintf("%s %s", s.messages.Message(render.MsgImportFailed), ErrorDetail(err)))
}

// ErrorDetail picks the most useful text out of a read or parse failure.
func ErrorDetail(err error) string {
	var parseErr *schema.ParseError
	if errors.As(err, &parseErr) {
		if msgs := parseErr.Messages(); len(msgs) > 0 {
			return msgs[0]
		}
	}
	var readErr *fileio.ReadError
	if errors.As(err, &readErr) && readErr.Err != nil {
		return readErr.Err.Error()
	}
	return err.Error()
}

// Export hands the serialized schema to the configured downloader.
func (s *Session) Export(ctx context.Context, name string) error {
	if s.downloader == nil {
		return ErrNoDownloader
	}
	return s.ExportTo(ctx, s.downloader, name)
}

// ExportTo hands the serialized schema to d under name, which defaults to
// fileio.DefaultExportName. Names ending in .yaml or .yml export YAML.
func (s *Session) ExportTo(ctx context.Context, d fileio.Downloader, name string) error {
	if d == nil {
		return ErrNoDownloader
	}
	name = fileio.SafeName(name)
	text, err := schema.Encode(s.store.Schema(), schema.FormatFromName(name))
	if err != nil {
		return fmt.Errorf("session: export: %w", err)
	}
	if err := d.Download(ctx, text, name); err != nil {
		return fmt.Errorf("session: export: %w", err)
	}
	s.logger.Debug("session: schema exported", "name", name)
	return nil
}

// Submit validates every field and, when nothing fails, passes the payload
// to the store's submitter and raises the "Form submitted" notice. A
// submitter that answers with a *RejectedError has its messages mapped onto
// the fields; messages for no known field become error notices.
func (s *Session) Submit(ctx context.Context) (state.Submission, error) {
	result, err := s.store.Submit(ctx)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			mapping := render.MapErrorPayload(s.store.Schema(), rejected.Errors)
			s.store.ApplyErrors(mapping.Fields)
			for _, msg := range mapping.Form {
				s.Notify(ctx, render.NoticeError, msg)
			}
			s.logger.Info("session: submission rejected remotely", "fields", len(mapping.Fields), "form", len(mapping.Form))
			result.Accepted = false
			result.Errors = s.store.Errors()
			return result, nil
		}
		s.Notify(ctx, render.NoticeError, err.Error())
		return result, err
	}
	if !result.Accepted {
		return result, nil
	}

	data, err := json.MarshalIndent(result.Payload, "", "  ")
	if err != nil {
		return result, fmt.Errorf("session: encode payload: %w", err)
	}
	s.Notify(ctx, render.NoticeInfo, s.messages.Message(render.MsgSubmitAccepted, string(data)))
	return result, nil
}

// RenderOptions collects the store state for a render. Pending notices are
// left queued; callers that show them take them with Notices.
func (s *Session) RenderOptions() render.RenderOptions {
	snap := s.store.Snapshot()
	opts := s.messages
	opts.Values = snap.Values
	opts.Errors = snap.Errors
	opts.EditorText = snap.EditorText
	if snap.EditorErr != nil {
		opts.EditorError = ErrorDetail(snap.EditorErr)
	}
	return opts
}
