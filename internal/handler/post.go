package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devaloi/meowww/internal/domain"
	"github.com/devaloi/meowww/internal/hub"
	"github.com/devaloi/meowww/internal/store"
)

const maxFormSize = 64 << 10

// PostMessage accepts a form with nickname and content fields and adds
// the message to the room. Degenerate messages are dropped silently.
func PostMessage(h *hub.Hub, s store.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "room")
		r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}
		nickname, okNick := r.PostForm["nickname"]
		content, okContent := r.PostForm["content"]
		if !okNick || !okContent {
			http.Error(w, "nickname and content fields required", http.StatusBadRequest)
			return
		}

		msg := domain.Message{Nickname: nickname[0], Content: content[0]}
		if hub.Mutate(h, name, hub.AddMessage(msg)) && s != nil {
			if err := s.RecordMessage(name, time.Now()); err != nil {
				logger.Warn("store.record_message", "room", name, "err", err)
			}
		}
		http.Redirect(w, r, "/"+url.PathEscape(name), http.StatusSeeOther)
	}
}
