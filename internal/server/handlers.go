package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vanshika/linktrace/backend/internal/domain"
	"github.com/vanshika/linktrace/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.ConnectionService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.ConnectionService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

type celebritiesResponse struct {
	Celebrities []string `json:"celebrities"`
}

type searchResponse struct {
	Results []domain.Suggestion `json:"results"`
}

type connectRequest struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	MaxDepth int     `json:"max_depth"`
	Timeout  float64 `json:"timeout"` // seconds
}

type connectSuccess struct {
	Success bool                `json:"success"`
	Path    []string            `json:"path"`
	Details []domain.PathDetail `json:"details"`
	Length  int                 `json:"length"`
}

type connectFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *APIHandlers) handleCelebrities(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, celebritiesResponse{Celebrities: h.service.Celebrities()})
}

func (h *APIHandlers) handleCelebrityInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.Trim(name, "/")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	respondJSON(w, http.StatusOK, h.service.EntityInfo(r.Context(), name))
}

func (h *APIHandlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, service.ErrQueryRequired) {
			writeError(w, http.StatusBadRequest, "Query parameter required")
			return
		}
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []domain.Suggestion{}
	}
	respondJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (h *APIHandlers) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	conn, err := h.service.Connect(r.Context(), service.ConnectParams{
		Start:    req.Start,
		End:      req.End,
		MaxDepth: req.MaxDepth,
		Timeout:  secondsToDuration(req.Timeout),
	})
	if err != nil {
		if errors.Is(err, service.ErrEndpointsRequired) {
			writeError(w, http.StatusBadRequest, "Start and end parameters required")
			return
		}
		h.logger.Error("connect failed", "error", err, "start", req.Start, "end", req.End)
		writeError(w, http.StatusInternalServerError, "connect failed")
		return
	}

	if !conn.Success {
		respondJSON(w, http.StatusOK, connectFailure{Success: false, Message: conn.Message})
		return
	}

	details := conn.Details
	if details == nil {
		details = []domain.PathDetail{}
	}
	respondJSON(w, http.StatusOK, connectSuccess{
		Success: true,
		Path:    conn.Path,
		Details: details,
		Length:  conn.Length,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

// maxTimeoutSeconds is the largest whole number of seconds a time.Duration holds.
const maxTimeoutSeconds = float64(math.MaxInt64 / int64(time.Second))

// secondsToDuration converts a request timeout in seconds. Values too large
// for a Duration saturate so the service caps them at its limit.
func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	if seconds >= maxTimeoutSeconds {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}
