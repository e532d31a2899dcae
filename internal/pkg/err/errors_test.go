package err

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(CodeOK))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(CodeTooManyRequests))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(4242))
	assert.Equal(t, "internal_error", Message(4242))
}

func TestJSON_CarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(WithRequestID(req.Context(), "rid-1"))

	JSON(c, CodeConflict, map[string]int{"id": 3})

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeConflict, resp.Code)
	assert.Equal(t, "conflict", resp.Message)
	assert.Equal(t, "rid-1", resp.RequestID)
}
