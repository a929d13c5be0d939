package agentauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	options := &Options{}
	options.Engine.Resource = "https://example.com/v1/agents/demo"
	service, err := New(t.Context(), options)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8501", options.CallbackAddr)
	assert.Equal(t, "http://127.0.0.1:8501/", options.RedirectURI)

	handler := service.Handler()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/?code=abc&state=unknown", nil))
	assert.Equal(t, http.StatusGone, recorder.Code)
}

func TestNew_Validate(t *testing.T) {
	_, err := New(t.Context(), &Options{})
	require.Error(t, err)
}
