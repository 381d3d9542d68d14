package rest

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"movie night"}`))
		var b body
		require.NoError(t, ReadJSON(r, &b))
		assert.Equal(t, "movie night", b.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var b body
		require.NoError(t, ReadJSON(r, &b))
		assert.Empty(t, b.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"nam":"x"}`))
		var b body
		assert.Error(t, ReadJSON(r, &b))
	})

	t.Run("trailing value", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var b body
		assert.Error(t, ReadJSON(r, &b))
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteJSON(w, 201, Envelope{"data": "ok"}))
	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":"ok"}`, w.Body.String())
}
