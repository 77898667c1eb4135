package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Imergent-Technology/Protogen-sub001/internal/manager"
	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known manager and toolset errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case manager.IsInvalidScene(err), manager.IsInvalidConfig(err):
		return http.StatusBadRequest
	case manager.IsSceneNotWarm(err), toolset.IsUnknownToolset(err):
		return http.StatusNotFound
	case toolset.IsLoadFailure(err):
		return http.StatusBadGateway
	case manager.IsPrerenderFailure(err):
		return http.StatusInternalServerError
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case manager.IsDestroyed(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, errSceneNotFound), errors.Is(err, errDeckNotFound):
		return http.StatusNotFound
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

var (
	errSceneNotFound = errors.New("scene not found")
	errDeckNotFound  = errors.New("deck not found")
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeError writes err with the status statusFor picks.
func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already out; nothing more can be reported to the client
		logf(nil, LevelError, "encode response: %v", err)
	}
}
