package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWritesDataAndMeta(t *testing.T) {
	c, rec := newContext()

	JSON(c, http.StatusOK, map[string]int{"total_students": 3}, nil, map[string]interface{}{"source": "local"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body struct {
		Data  map[string]int         `json:"data"`
		Meta  map[string]interface{} `json:"meta"`
		Error *appErrors.Error       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data["total_students"])
	assert.Equal(t, "local", body.Meta["source"])
	assert.Nil(t, body.Error)
}

func TestErrorUsesStatusFromChain(t *testing.T) {
	c, rec := newContext()

	Error(c, fmt.Errorf("lookup: %w", appErrors.NotFoundf("no students found for class %s", "c9")))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "no students found for class c9", body.Error.Message)
	assert.Nil(t, body.Data)
}

func TestErrorDefaultsToInternal(t *testing.T) {
	c, rec := newContext()

	Error(c, fmt.Errorf("disk full"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
