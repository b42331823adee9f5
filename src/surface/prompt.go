package surface

import (
	"context"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"screenshots/src/messages"
)

// PromptSavePath asks the surface to show a save dialog and waits for the
// answer. Losing the connection the dialog was sent on, by disconnect or
// replacement, counts as a cancelled dialog.
func (s *Server) PromptSavePath(ctx context.Context, defaultPath string) (string, bool, error) {
	conn := s.current()
	if conn == nil {
		return "", false, ErrNotConnected
	}
	id := uuid.NewString()
	ch := make(chan messages.SaveDialogResult, 1)

	s.pendingMu.Lock()
	s.pending[id] = pendingPrompt{conn: conn, ch: ch}
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	if err := s.sendTo(conn, messages.SaveDialog{ID: id, DefaultPath: defaultPath}); err != nil {
		return "", false, err
	}

	select {
	case res := <-ch:
		if res.Canceled || res.FilePath == "" {
			return "", false, nil
		}
		return res.FilePath, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

type pendingPrompt struct {
	conn *websocket.Conn
	ch   chan messages.SaveDialogResult
}

func (s *Server) resolvePending(res messages.SaveDialogResult) {
	s.pendingMu.Lock()
	p, ok := s.pending[res.ID]
	delete(s.pending, res.ID)
	s.pendingMu.Unlock()
	if ok {
		p.ch <- res
	}
}

// cancelPending cancels every prompt that is waiting on conn.
func (s *Server) cancelPending(conn *websocket.Conn) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	for id, p := range s.pending {
		if p.conn != conn {
			continue
		}
		p.ch <- messages.SaveDialogResult{ID: id, Canceled: true}
		delete(s.pending, id)
	}
}
