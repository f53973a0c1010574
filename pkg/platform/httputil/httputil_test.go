package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "frontdesk/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error carries its message but not its cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		assert.Equal(t, "internal_error", body["error"])
		assert.Equal(t, "db failed", body["error_description"])
		if _, ok := body["detail"]; ok {
			t.Fatalf("expected detail to be omitted when causes are hidden")
		}
	})

	t.Run("exposed causes outside production", func(t *testing.T) {
		ExposeErrorCauses(true)
		t.Cleanup(func() { ExposeErrorCauses(false) })

		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeInternal, "db failed"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "db failed", body["error_description"])
		assert.Equal(t, "db failed: dial tcp: refused", body["detail"])

		w = httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "Key not found"))
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.NotContains(t, w.Body.String(), "detail")
	})

	t.Run("unclassified error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("status per code", func(t *testing.T) {
		cases := map[dErrors.Code]int{
			dErrors.CodeBadRequest:   http.StatusBadRequest,
			dErrors.CodeValidation:   http.StatusBadRequest,
			dErrors.CodeDuplicate:    http.StatusBadRequest,
			dErrors.CodeUnauthorized: http.StatusUnauthorized,
			dErrors.CodeForbidden:    http.StatusForbidden,
			dErrors.CodeNotFound:     http.StatusNotFound,
			dErrors.CodeRateLimited:  http.StatusTooManyRequests,
		}
		for code, status := range cases {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(code, "msg"))
			assert.Equal(t, status, w.Code, string(code))

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, string(code), body["error"])
			assert.Equal(t, "msg", body["error_description"])
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","role":"Admin"}`))
		var p payload
		err := DecodeJSON(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		err := DecodeJSON(r, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("decodes known fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "a", p.Name)
	})
}
