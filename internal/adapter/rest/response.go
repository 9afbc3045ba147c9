package rest

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
)

const kindRateLimited = "rate_limited"

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error","kind","status"} and records its kind for
// the request metrics.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	writeErrorKind(w, r, statusForKind(kind), kind, err.Error())
}

func writeErrorKind(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	if st := stateFrom(r.Context()); st != nil {
		st.errKind = kind
	}
	writeJSON(w, status, errorResponse{Error: message, Kind: kind, Status: status})
}

func statusForKind(kind string) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	case domain.KindModerationRejected:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
