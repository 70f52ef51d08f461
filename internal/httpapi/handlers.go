package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vctt94/memoryboard/internal/board"
)

// handleLook implements GET /look/:pid.
func (s *Server) handleLook(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	if !validatePlayerID(w, pid) {
		return
	}
	b, _ := s.current()
	writeSnapshot(w, b.Look(pid))
}

// handleFlip implements GET /flip/:pid/:r,:c.
func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	if !validatePlayerID(w, pid) {
		return
	}
	row, col, ok := parseCoord(chi.URLParam(r, "coord"))
	if !ok {
		http.Error(w, "coordinates must be \"row,col\"", http.StatusBadRequest)
		return
	}

	b, _ := s.current()
	snap, err := b.Flip(pid, row, col)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}

// handleReplace implements GET /replace/:pid/:from/:to as Map with
// f = (c -> to if c == from else c).
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	if !validatePlayerID(w, pid) {
		return
	}
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")

	replace := func(ctx context.Context, label string) (string, error) {
		if label == from {
			return to, nil
		}
		return label, nil
	}

	b, _ := s.current()
	snap, err := b.Map(r.Context(), pid, replace)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}

// handleReset implements GET /reset?filename=... — it re-parses a
// board file and atomically swaps the live board.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "missing filename query parameter", http.StatusBadRequest)
		return
	}

	f, err := readFile(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()

	newBoard, err := board.NewFromReader(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.swap(newBoard)
	s.log.Infof("reset board from %s", filename)
	w.WriteHeader(http.StatusOK)
}

// parseCoord parses a chi path segment shaped like "3,4".
func parseCoord(s string) (row, col int, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return row, col, true
}
