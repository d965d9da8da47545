package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mdfakih/inventory-backend/api/responses"
	pkgerrors "github.com/mdfakih/inventory-backend/pkg/errors"
	"github.com/mdfakih/inventory-backend/pkg/logger"
)

// actorHeader carries the authenticated identity injected by the gateway in
// front of this service. Authentication itself happens there.
const actorHeader = "X-Actor"

type contextKey string

const ctxActor contextKey = "actor"

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActor).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the actor identity into the context.
func WithActor(ctx context.Context, actor string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// Actor requires the gateway-injected identity header on every request and
// makes it available to handlers and the audit trail.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(actorHeader))
			if actor == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor header required"))
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
