package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/httputil"
	"frontdesk/pkg/requestcontext"
)

// Authenticator resolves a bearer token into the caller it belongs to.
// Any failure other than an internal error must be reported without saying
// which check failed.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*requestcontext.AuthPrincipal, error)
}

var errAuthenticationFailed = dErrors.New(dErrors.CodeUnauthorized, "Authentication failed")

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated principal into the request context.
func RequireAuth(authenticator Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
				return
			}

			principal, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				if dErrors.CodeOf(err) == dErrors.CodeInternal {
					logger.ErrorContext(ctx, "failed to authenticate token",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, err)
					return
				}
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, errAuthenticationFailed)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, *principal)))
		})
	}
}

// RequireRole lets the request through only when the authenticated principal
// holds one of roles. It must run after RequireAuth.
func RequireRole(logger *slog.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := requestcontext.Principal(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
				return
			}
			if !principal.Role.In(roles...) {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"user_id", principal.UserID,
					"role", principal.Role,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Access denied. "+describeRoles(roles)+" privileges required."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func describeRoles(roles []domain.Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return strings.Join(names, " or ")
}
