package handler

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devaloi/meowww/internal/domain"
	"github.com/devaloi/meowww/internal/hub"
)

var (
	//go:embed templates/*.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS

	pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))
)

type homeView struct {
	Rooms []domain.Room
}

type roomView struct {
	Name     string
	Messages []domain.Message
}

// Home renders the landing page with the list of live rooms.
func Home(h *hub.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, logger, "home.html", homeView{Rooms: h.Rooms()})
	}
}

// RoomPage renders a room's history. An unknown room renders empty and
// is not created.
func RoomPage(h *hub.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "room")
		msgs, _ := h.History(name)
		render(w, logger, "room.html", roomView{Name: name, Messages: msgs})
	}
}

// Static serves the embedded client script and stylesheet under /_/static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(servicePrefix+"/static/", http.FileServerFS(sub))
}

func render(w http.ResponseWriter, logger *slog.Logger, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("template.render", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
