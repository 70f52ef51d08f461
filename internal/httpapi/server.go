// Package httpapi maps a handful of plain HTTP routes onto Board
// operations and maps Board errors onto HTTP status codes. It has no
// board semantics of its own — it is a thin transport adapter.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/decred/slog"
	"github.com/vctt94/memoryboard/internal/board"
)

var playerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Server holds the currently live board and serves HTTP routes
// against it. GET /reset swaps the board pointer atomically under
// generationMu and bumps the generation token. Every other handler
// reads the current board under generationMu; only the websocket watch
// keeps the token it started with, and compares it after each change
// event it receives so it can stop once a reset has happened.
type Server struct {
	generationMu sync.RWMutex
	b            *board.Board
	generation   uuid.UUID

	log slog.Logger
}

// NewServer wraps an already-constructed board for HTTP serving.
func NewServer(b *board.Board, log slog.Logger) *Server {
	return &Server{
		b:          b,
		generation: uuid.New(),
		log:        log,
	}
}

// current returns the live board and its generation token.
func (s *Server) current() (*board.Board, uuid.UUID) {
	s.generationMu.RLock()
	defer s.generationMu.RUnlock()
	return s.b, s.generation
}

// swap installs a newly parsed board as current, bumping the
// generation token so outstanding watchers on the old board can
// notice the reset.
func (s *Server) swap(b *board.Board) uuid.UUID {
	s.generationMu.Lock()
	defer s.generationMu.Unlock()
	s.b = b
	s.generation = uuid.New()
	return s.generation
}

// Router builds the chi router exposing the board's HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/look/{pid}", s.handleLook)
	r.Get("/flip/{pid}/{coord}", s.handleFlip)
	r.Get("/replace/{pid}/{from}/{to}", s.handleReplace)
	r.Get("/watch/{pid}", s.handleWatch)
	r.Get("/reset", s.handleReset)
	return r
}

func validatePlayerID(w http.ResponseWriter, pid string) bool {
	if !playerIDPattern.MatchString(pid) {
		http.Error(w, "player id must match [A-Za-z0-9_]+", http.StatusBadRequest)
		return false
	}
	return true
}

// writeBoardError maps a Board error to a 409 Conflict response with
// its message; any other error is reported the same way.
func writeBoardError(w http.ResponseWriter, err error) {
	var berr *board.Error
	if errors.As(err, &berr) {
		http.Error(w, berr.Error(), http.StatusConflict)
		return
	}
	http.Error(w, err.Error(), http.StatusConflict)
}

func writeSnapshot(w http.ResponseWriter, snapshot string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, snapshot)
}

// readFile is a tiny seam so tests can stub out disk access for
// /reset without touching the real filesystem.
var readFile = os.Open
