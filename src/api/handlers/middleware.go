package handlers

import (
	"context"
	"net/http"

	"assetmanager/src/utils"

	"github.com/go-chi/jwtauth"
)

type contextKey string

const userIDKey = contextKey("user_id")

// Authenticator rejects requests without a valid access token and stores
// the user id in the request context.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.AuthController.Authenticate(jwtauth.TokenFromHeader(r))
		if err != nil {
			h.HandleErrors(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = utils.WithLogger(ctx, h.Logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
