package testutil

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"frontdesk/pkg/domain"
	"frontdesk/pkg/requestcontext"
)

const testToken = "test-token"

// WithPrincipal authenticates req as userID the way RequireAuth would.
func WithPrincipal(req *http.Request, userID uuid.UUID, role domain.Role) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), principal(userID, role)))
}

// PrincipalContext is the service-test counterpart of WithPrincipal.
func PrincipalContext(userID uuid.UUID, role domain.Role) context.Context {
	return requestcontext.WithPrincipal(context.Background(), principal(userID, role))
}

// WithBearer sets the Authorization header for requests that go through the
// real auth middleware.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func principal(userID uuid.UUID, role domain.Role) requestcontext.AuthPrincipal {
	return requestcontext.AuthPrincipal{UserID: userID, Role: role, Token: testToken}
}
