package session

import (
	"log/slog"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/state"
)

// Option configures a Session.
type Option func(*Session)

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithReader sets the reader used by Import.
func WithReader(reader *fileio.Reader) Option {
	return func(s *Session) {
		if reader != nil {
			s.reader = reader
		}
	}
}

// WithDownloader sets the default target of Export.
func WithDownloader(d fileio.Downloader) Option {
	return func(s *Session) {
		s.downloader = d
	}
}

// WithNotifier forwards every notice to n as it is raised.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithStoreOptions configures the store created for the session.
func WithStoreOptions(opts ...state.Option) Option {
	return func(s *Session) {
		s.storeOptions = append(s.storeOptions, opts...)
	}
}

// WithLogger sets the logger used by the session and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVariant sets the initial theme variant.
func WithVariant(variant string) Option {
	return func(s *Session) {
		if variant != "" {
			s.variant = variant
		}
	}
}

// WithMessages overrides the notice texts, e.g. to localise them.
func WithMessages(opts render.RenderOptions) Option {
	return func(s *Session) {
		s.messages = opts
	}
}
