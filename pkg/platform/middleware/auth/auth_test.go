package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/requestcontext"
	"frontdesk/pkg/testutil"
)

type stubAuthenticator struct {
	principal *requestcontext.AuthPrincipal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*requestcontext.AuthPrincipal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := requestcontext.Principal(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(p.UserID.String()))
	})
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()

	t.Run("missing header is unauthorized", func(t *testing.T) {
		stub := &stubAuthenticator{}
		h := RequireAuth(stub, discardLogger())(echoPrincipal())

		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, "/", nil))

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		assert.Empty(t, stub.gotToken)
	})

	t.Run("non bearer scheme is unauthorized", func(t *testing.T) {
		stub := &stubAuthenticator{}
		h := RequireAuth(stub, discardLogger())(echoPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")

		rr := testutil.DoRequest(h, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("rejected token yields uniform message", func(t *testing.T) {
		stub := &stubAuthenticator{err: dErrors.New(dErrors.CodeUnauthorized, "token not in session list")}
		h := RequireAuth(stub, discardLogger())(echoPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok-1")

		rr := testutil.DoRequest(h, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "Authentication failed", body["error_description"])
		assert.Equal(t, "tok-1", stub.gotToken)
	})

	t.Run("internal failure is 500", func(t *testing.T) {
		stub := &stubAuthenticator{err: dErrors.Wrap(errors.New("redis down"), dErrors.CodeInternal, "session lookup failed")}
		h := RequireAuth(stub, discardLogger())(echoPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok-1")

		rr := testutil.DoRequest(h, req)

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	})

	t.Run("valid token injects principal", func(t *testing.T) {
		stub := &stubAuthenticator{principal: &requestcontext.AuthPrincipal{UserID: userID, Role: domain.RoleEmployee, Token: "tok-1"}}
		h := RequireAuth(stub, discardLogger())(echoPrincipal())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok-1")

		rr := testutil.DoRequest(h, req)

		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, userID.String(), string(testutil.ReadBody(t, rr)))
	})
}

func TestRequireRole(t *testing.T) {
	adminOnly := RequireRole(discardLogger(), domain.RoleAdmin)(echoPrincipal())

	t.Run("no principal is unauthorized", func(t *testing.T) {
		rr := testutil.DoRequest(adminOnly, httptest.NewRequest(http.MethodGet, "/", nil))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), domain.RoleEmployee)
		rr := testutil.DoRequest(adminOnly, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("matching role passes", func(t *testing.T) {
		req := testutil.WithPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New(), domain.RoleAdmin)
		rr := testutil.DoRequest(adminOnly, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})
}
