package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NavigateRequest asks the reader to jump to a page.
type NavigateRequest struct {
	Page int `json:"page"`
}

// NavigateResponse acknowledges an accepted navigation. The move itself
// shows up on the event stream.
type NavigateResponse struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		tuilog.Log.Debug("writeJSON: encode failed", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}

// errNoDocument means no open document has been published yet, or the
// reader has closed.
var errNoDocument = errors.New("no document is open")

// current returns the latest event of an open document.
func (s *Server) current() (events.Event, bool) {
	ev, ok := s.hub.Last()
	if !ok || ev.Type == events.TypeClosed || ev.TotalPages < 1 {
		return events.Event{}, false
	}
	return ev, true
}

// handleGetPosition returns the reader's latest position snapshot.
// GET /v1/position
func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.current()
	if !ok {
		writeError(w, http.StatusNotFound, "no_document", "No document is open")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleNavigate forwards a page jump to the reader.
// POST /v1/navigate with body {"page": 12}
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	resp, err := s.navigate(req.Page)
	switch {
	case errors.Is(err, errNoDocument):
		writeError(w, http.StatusConflict, "no_document", "No document is open")
	case errors.Is(err, pageview.ErrPageOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "page_out_of_range", "page must be between 1 and the page count")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "navigate_failed", err.Error())
	default:
		writeJSON(w, http.StatusAccepted, resp)
	}
}

// navigate validates page against the last published page count and hands
// it to the reader. The reader applies it on its own loop, so success means
// accepted, not done.
func (s *Server) navigate(page int) (NavigateResponse, error) {
	ev, ok := s.current()
	if !ok {
		return NavigateResponse{}, errNoDocument
	}
	if page < 1 || page > ev.TotalPages {
		return NavigateResponse{}, pageview.ErrPageOutOfRange
	}
	if err := s.nav.NavigateToPage(page); err != nil {
		if !errors.Is(err, pageview.ErrPageOutOfRange) {
			tuilog.Log.Error("Server.navigate: navigation failed", "page", page, "error", err)
		}
		return NavigateResponse{}, err
	}
	tuilog.Log.Info("Server.navigate", "page", page)
	return NavigateResponse{Page: page, TotalPages: ev.TotalPages}, nil
}
