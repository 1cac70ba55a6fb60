package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/auth"
)

// ownerFromPath resolves the {id} path segment and rejects callers who
// are not that user. A mismatch reads as not-found rather than
// forbidden so other users' IDs cannot be confirmed by guessing.
func ownerFromPath(r *http.Request) (uuid.UUID, *AppError) {
	authUserID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}

	if userID != authUserID {
		return uuid.Nil, ErrResourceNotFound
	}

	return userID, nil
}
