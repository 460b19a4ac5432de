package auth

import (
	"context"
	"net/http"
	"strings"

	sharederrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
)

type contextKey string

const actorContextKey contextKey = "artconnect.auth.actor"

// Actor is the authenticated caller.
type Actor struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the actor carries role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// ActorFromContext returns the actor stored by Middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}

// ContextWithActor stores actor on ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// Extractor pulls an Actor out of a request.
type Extractor func(*http.Request) Actor

// HeaderExtractor reads X-Actor-Subject and the comma-separated X-Actor-Roles.
func HeaderExtractor(r *http.Request) Actor {
	var roles []string
	for _, role := range strings.Split(r.Header.Get("X-Actor-Roles"), ",") {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	return Actor{
		Subject: r.Header.Get("X-Actor-Subject"),
		Roles:   roles,
	}
}

// ActionFunc derives the policy action for a request.
type ActionFunc func(*http.Request) string

// DefaultAction is METHOD:/path.
func DefaultAction(r *http.Request) string {
	return r.Method + ":" + r.URL.Path
}

// Middleware denies requests whose action is not allowed for the actor's roles.
func Middleware(engine *Engine, extractor Extractor, action ActionFunc) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = HeaderExtractor
	}
	if action == nil {
		action = DefaultAction
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := extractor(r)
			act := action(r)
			allowed := engine.Allowed(act, actor.Roles)
			recordAudit(NewAuditEvent(act, actor, allowed))

			if !allowed {
				WriteForbidden(w, r, actor)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// WriteForbidden writes a 403 response in the shared error schema.
func WriteForbidden(w http.ResponseWriter, r *http.Request, actor Actor) {
	lang := sharederrors.MatchLanguage(r.Header.Get("Accept-Language"))
	resp := sharederrors.New(sharederrors.CodeUnauthorized,
		sharederrors.Localize(sharederrors.CodeUnauthorized, lang),
		sharederrors.WithActor(&sharederrors.Actor{
			Subject: actor.Subject,
			Roles:   actor.Roles,
		}),
		sharederrors.WithRequestID(r.Header.Get("X-Request-ID")),
	)
	data, _ := sharederrors.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write(data)
}
