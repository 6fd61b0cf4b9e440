package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/internal/services"
	"github.com/saltmarsh-games/worldengine/internal/storage"
	"github.com/saltmarsh-games/worldengine/pkg/engine"
	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/textfilter"
	"github.com/saltmarsh-games/worldengine/pkg/validate"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// SessionHandler manages session lifecycle.
// Routes:
// POST /v1/session        - Create new session
// GET /v1/session/{id}    - Read session by ID
// DELETE /v1/session/{id} - Delete session by ID
type SessionHandler struct {
	storage  storage.Storage
	narrator services.Narrator
	logger   *slog.Logger
	filter   *textfilter.Filter // nil unless family-friendly mode is on
}

func NewSessionHandler(storage storage.Storage, narrator services.Narrator, filter *textfilter.Filter, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage:  storage,
		narrator: narrator,
		filter:   filter,
		logger:   logger,
	}
}

// CreateSessionRequest defines the request body for creating a session
type CreateSessionRequest struct {
	World string `json:"world"` // Required: world key
}

// SessionResponse is returned on create and read. Narration is only
// set on create, where it carries the opening scene.
type SessionResponse struct {
	Session   *session.State   `json:"session"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Narration string           `json:"narration,omitempty"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")
	var sessionID uuid.UUID
	var err error

	if path != "" {
		sessionID, err = uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid session ID", "id", path, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if sessionID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required for GET requests")
			return
		}
		h.handleRead(w, r, sessionID)

	case http.MethodDelete:
		if sessionID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, sessionID)

	default:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.World == "" {
		h.logger.Warn("Missing required field: world")
		writeError(w, h.logger, http.StatusBadRequest, "world field is required")
		return
	}

	wld, err := h.storage.GetWorld(r.Context(), req.World)
	if err != nil {
		h.logger.Warn("Failed to load world", "world", req.World, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to load world: "+err.Error())
		return
	}

	// A world that fails static analysis is not playable.
	if report := validate.Run(wld); report.HasErrors() {
		h.logger.Warn("World failed validation", "world", req.World, "errors", len(report.Errors()))
		writeError(w, h.logger, http.StatusUnprocessableEntity, "World failed validation; see /v1/worlds/"+req.World+"/validate")
		return
	}

	st := session.New(req.World, wld)
	resolver := engine.NewResolver(wld, h.logger)
	snap := resolver.Snapshot(st)

	narration := h.narrateOpening(r.Context(), wld.Name, snap)

	if err := h.storage.SaveSession(r.Context(), st); err != nil {
		h.logger.Error("Failed to save session", "uuid", st.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created", "uuid", st.ID, "world", req.World)

	w.WriteHeader(http.StatusCreated)
	response := SessionResponse{Session: st, Snapshot: snap, Narration: narration}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

// narrateOpening renders the opening scene. Narration failures are
// soft: the session is created either way.
func (h *SessionHandler) narrateOpening(ctx context.Context, worldName string, snap *engine.Snapshot) string {
	nctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &services.NarrationRequest{
		WorldName: worldName,
		FirstTurn: true,
		Snapshot:  snap,
	}
	narration, err := h.narrator.Narrate(nctx, req)
	if err != nil {
		h.logger.Warn("Opening narration failed, using plain rendering", "error", err)
		narration = services.RenderPlain(req)
	}
	if h.filter != nil {
		narration = h.filter.Clean(narration)
	}
	return narration
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if st == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	wld, err := h.storage.GetWorld(r.Context(), st.World)
	if err != nil {
		h.logger.Error("Failed to load world for session", "uuid", id, "world", st.World, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session world")
		return
	}

	snap := engine.NewResolver(wld, h.logger).Snapshot(st)
	response := SessionResponse{Session: st, Snapshot: snap}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Info("Session deleted", "uuid", id)
	w.WriteHeader(http.StatusNoContent)
}
