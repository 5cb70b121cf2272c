package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/api/shared"
)

func learnerIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	learnerID, ok := shared.LearnerIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner identity required")
		return uuid.Nil, false
	}
	return learnerID, true
}

func getPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// optionalQueryUUID parses an optional UUID query parameter.
func optionalQueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &id, nil
}

func optionalQueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}
