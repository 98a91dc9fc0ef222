// Package viewer serves the clip board as server-rendered HTML plus a small
// JSON endpoint for incremental loading.
package viewer

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_clip/internal/board"
	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/toolutil"
)

type server struct {
	store    board.Store
	script   board.Mutator
	tpl      *template.Template
	pageSize int
}

// NewServer creates the viewer handler over store. script may be nil, in
// which case mutation endpoints answer 503.
func NewServer(store board.Store, script board.Mutator, pageSize int) http.Handler {
	tpl := template.Must(template.New("page").Funcs(template.FuncMap{
		"q":   url.QueryEscape,
		"inc": func(n int) int { return n + 1 },
	}).Parse(pageTpl))
	template.Must(tpl.New("detail").Parse(detailTpl))

	s := &server{store: store, script: script, tpl: tpl, pageSize: toolutil.NormSize(pageSize, 24)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /item/{id}", s.handleDetail)
	mux.HandleFunc("POST /item/{id}/read", s.handleMarkRead)
	mux.HandleFunc("POST /item/{id}/favorite", s.handleToggleFavorite)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.Handle("GET /health", HealthHandler(store))
	return mux
}

type indexView struct {
	Tab       board.Tab
	Stats     board.Counts
	State     engine.State
	Err       string
	Cards     []board.Card
	Page      board.Paged
	Loading   bool
	Failed    bool
	Mutable   bool
	FromCache bool
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tab := toolutil.NormTab(r.URL.Query().Get("tab"))
	page := toolutil.NormPage(toolutil.AtoiDefault(r.URL.Query().Get("page"), 1))

	snap := s.store.Snapshot()
	filtered := board.Filter(snap.Rows, tab)
	paged := board.Page(filtered, page, s.pageSize)

	v := indexView{
		Tab:       tab,
		Stats:     board.Stats(snap.Rows),
		State:     snap.State,
		Err:       snap.Err,
		Cards:     board.Cards(paged.Rows),
		Page:      paged,
		Loading:   snap.State == engine.StateIdle || snap.State == engine.StateLoading,
		Failed:    snap.State == engine.StateFailed,
		Mutable:   s.mutable(),
		FromCache: snap.FromCache,
	}
	s.render(w, "page", v)
}

type detailView struct {
	Tab     board.Tab
	Item    board.Detail
	Mutable bool
}

func (s *server) handleDetail(w http.ResponseWriter, r *http.Request) {
	tab := toolutil.NormTab(r.URL.Query().Get("tab"))
	d, ok := board.NewDetail(s.store.Snapshot().Rows, tab, r.PathValue("id"))
	if !ok {
		httpError(w, http.StatusNotFound, "item not found")
		return
	}
	s.render(w, "detail", detailView{Tab: tab, Item: d, Mutable: s.mutable()})
}

func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := board.MarkRead(r.Context(), s.store, s.script, id); err != nil {
		mutationError(w, "mark as read", err)
		return
	}
	slog.Info("viewer: marked read", slog.String("id", id))
	redirectBack(w, r, "/item/"+url.PathEscape(id))
}

func (s *server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fav, err := board.ToggleFavorite(r.Context(), s.store, s.script, id)
	if err != nil {
		mutationError(w, "toggle favorite", err)
		return
	}
	slog.Info("viewer: toggled favorite", slog.String("id", id), slog.Bool("favorite", fav))
	redirectBack(w, r, "/item/"+url.PathEscape(id))
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Refresh(r.Context()); err != nil {
		slog.Warn("viewer: refresh failed", slog.Any("error", err))
	}
	redirectBack(w, r, "/")
}

type itemsResponse struct {
	State     engine.State `json:"state"`
	FromCache bool         `json:"from_cache"`
	Error     string       `json:"error,omitempty"`
	Tab       board.Tab    `json:"tab"`
	Stats     board.Counts `json:"stats"`
	board.Paged
	Items []board.Card `json:"items"`
}

func (s *server) handleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab := toolutil.NormTab(q.Get("tab"))
	page := toolutil.NormPage(toolutil.AtoiDefault(q.Get("page"), 1))
	size := toolutil.NormSize(toolutil.AtoiDefault(q.Get("size"), s.pageSize), s.pageSize)

	snap := s.store.Snapshot()
	paged := board.Page(board.Filter(snap.Rows, tab), page, size)
	writeJSON(w, http.StatusOK, itemsResponse{
		State:     snap.State,
		FromCache: snap.FromCache,
		Error:     snap.Err,
		Tab:       tab,
		Stats:     board.Stats(snap.Rows),
		Paged:     paged,
		Items:     board.Cards(paged.Rows),
	})
}

func (s *server) mutable() bool {
	return board.Writable(s.script)
}

func (s *server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("viewer: render failed", slog.String("template", name), slog.Any("error", err))
	}
}

// redirectBack sends the client to the form's "return" path, or fallback.
// Only local absolute paths are honoured.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.FormValue("return")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func mutationError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, board.ErrReadOnly):
		httpError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, board.ErrUnknownItem):
		httpError(w, http.StatusNotFound, err.Error())
	default:
		slog.Warn("viewer: mutation failed", slog.String("action", action), slog.Any("error", err))
		httpError(w, http.StatusBadGateway, action+" failed: "+err.Error())
	}
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("viewer: encode json failed", slog.Any("error", err))
	}
}
