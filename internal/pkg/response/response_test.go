package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveInternal(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ReadFailed(c, errors.New("dial tcp: user:secret@db:3306 refused"))
	return w
}

func TestInternalErrorHidesDetailByDefault(t *testing.T) {
	w := serveInternal(t)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "content read failed")
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "detail")
}

func TestInternalErrorExposesDetailWhenVerbose(t *testing.T) {
	SetVerbose(true)
	t.Cleanup(func() { SetVerbose(false) })

	w := serveInternal(t)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "dial tcp")
}
