package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/rest"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"processing_time_us", time.Since(start).Microseconds(),
		)
	})
}

// identityMw requires a valid token, taken from the Authorization header or the token query parameter.
func (c controller) identityMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := c.getToken(r)
		if token == "" {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": errorOutput{Code: "UNAUTHORIZED", Message: "token was not provided"}})
			return
		}

		identity, err := c.service.ParseToken(token)
		if err != nil {
			c.logger.DebugContext(r.Context(), "failed to parse token", "error", err)
			c.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtxKey, identity)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("participant_id", identity.ParticipantId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) roomCodeMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomCode := domain.CanonicalCode(chi.URLParam(r, "room-code"))

		ctx := context.WithValue(r.Context(), roomCodeCtxKey, roomCode)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("room_code", roomCode))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
