package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/goliatone/go-dynform/pkg/session"
)

const liveReadLimit = 1 << 20

// liveMessage is sent by the editor script.
type liveMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// liveReply answers an edit. When OK is false only Error is set and the
// page keeps showing the last schema that parsed.
type liveReply struct {
	Type        string `json:"type"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	HTML        string `json:"html,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// handleLive runs the live schema editor channel: every "edit" message is
// applied as editor text and answered with the re-rendered fields.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("server: websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(liveReadLimit)

	ctx := r.Context()
	for {
		var msg liveMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				s.logger.Debug("server: websocket closed", "session", sess.ID(), "status", status)
			}
			return
		}

		var reply liveReply
		switch msg.Type {
		case "edit":
			reply = s.applyEdit(ctx, sess, msg.Text)
		case "ping":
			reply = liveReply{Type: "pong", OK: true}
		default:
			reply = liveReply{Type: "error", Error: fmt.Sprintf("unknown message type: %s", msg.Type)}
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			s.logger.Debug("server: websocket write", "session", sess.ID(), "error", err)
			return
		}
	}
}

func (s *Server) applyEdit(ctx context.Context, sess *session.Session, text string) liveReply {
	if err := sess.Store().EditSchemaText(text); err != nil {
		return liveReply{Type: "schema", Error: session.ErrorDetail(err)}
	}

	form := sess.Store().Schema()
	opts := s.renderOptions(sess)
	opts.Fragment = true
	out, err := s.html.Render(ctx, form, opts)
	if err != nil {
		s.logger.Error("server: render live fragment", "error", err)
		return liveReply{Type: "schema", Error: "failed to render form"}
	}
	return liveReply{
		Type:        "schema",
		OK:          true,
		HTML:        string(out),
		Title:       form.FormTitle,
		Description: s.html.Description(form.FormDescription),
	}
}
