package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"livescore/internal/analysis"
	"livescore/internal/archive"
	"livescore/internal/product"
	"livescore/internal/snapshot"
)

// maxBodyBytes limits the size of an uploaded product table.
const maxBodyBytes = 8 << 20

// ApiV1Router manages routes for API version 1.
// Receives product tables scraped from the live dashboard, scores them and
// serves the stored snapshots.
type ApiV1Router struct {
	analyzer *analysis.Analyzer
	repo     *snapshot.Repository
	archive  archive.Archive
	// static: directory with static files; serving is disabled when empty.
	static string
}

// NewApiV1Router creates a new API v1 router.
func NewApiV1Router(
	static string,
	analyzer *analysis.Analyzer,
	repo *snapshot.Repository,
	arch archive.Archive,
) *ApiV1Router {
	return &ApiV1Router{
		analyzer: analyzer,
		repo:     repo,
		archive:  arch,
		static:   static,
	}
}

// Mux returns a configured *http.ServeMux with registered handlers:
//   - POST /api/v1/rooms/{room}/snapshots: analyzes a product table
//   - GET /api/v1/rooms/{room}/snapshots/latest: newest snapshot of a room
//   - GET /api/v1/rooms/{room}/snapshots: retained snapshots, oldest first
//   - GET /api/v1/tags/{tag}?room=&product=: tag tooltip of a product
//   - GET /health
//   - GET /static/...: static files (if enabled)
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/rooms/{room}/snapshots", ar.analyzeHandler)
	mux.HandleFunc("GET /api/v1/rooms/{room}/snapshots/latest", ar.latestHandler)
	mux.HandleFunc("GET /api/v1/rooms/{room}/snapshots", ar.historyHandler)
	mux.HandleFunc("GET /api/v1/tags/{tag}", ar.tagHandler)
	mux.HandleFunc("GET /health", ar.healthHandler)

	if len(ar.static) != 0 {
		fs := http.FileServer(http.Dir(ar.static))
		mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	}

	return mux
}

// analyzeHandler decodes an upstream envelope, analyzes it and stores the snapshot.
func (ar *ApiV1Router) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("Unable to read snapshot request body", "room", room, "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds limit")
		} else {
			writeError(w, http.StatusUnprocessableEntity, "unable to read request body")
		}
		return
	}

	batch, err := product.Decode(body)
	if err != nil {
		slog.Warn("Unable to decode product table", "room", room, "error", err)
		if errors.Is(err, product.ErrInvalidEnvelope) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			writeError(w, http.StatusUnprocessableEntity, "malformed JSON")
		}
		return
	}

	snap := ar.analyzer.AnalyzeBatch(room, batch)
	ar.repo.Append(room, snap)
	ar.archive.Append(snap)
	slog.Debug("Snapshot analyzed", "room", room, "id", snap.ID,
		"products", len(snap.Products), "hot", len(snap.Hot), "potential", len(snap.Potential))

	writeJSON(w, http.StatusCreated, snap)
}

func (ar *ApiV1Router) latestHandler(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	snap, err := ar.repo.Latest(room)
	if err != nil {
		slog.Debug("Snapshot not found", "room", room, "error", err)
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (ar *ApiV1Router) historyHandler(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	history, err := ar.repo.History(room)
	if err != nil {
		slog.Debug("Snapshot history not found", "room", room, "error", err)
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// tagHandler returns the rendered label of a tag carried by a product of the
// room's latest snapshot.
func (ar *ApiV1Router) tagHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("tag")
	room := r.URL.Query().Get("room")
	id := r.URL.Query().Get("product")
	if room == "" || id == "" {
		writeError(w, http.StatusUnprocessableEntity, "room and product must be specified")
		return
	}

	snap, err := ar.repo.Latest(room)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	p, found := snap.Find(id)
	if !found {
		writeError(w, http.StatusNotFound, "product not found: "+id)
		return
	}

	for _, label := range p.Labels {
		if label.Tag == name {
			writeJSON(w, http.StatusOK, label)
			return
		}
	}
	writeError(w, http.StatusNotFound, "tag not found: "+name)
}

func (ar *ApiV1Router) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Unable to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
