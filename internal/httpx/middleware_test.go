package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()), Metrics(nil))
	auth := r.Group("/", Caller())
	auth.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CallerID(c)})
	})
	r.GET("/fail/:kind", func(c *gin.Context) {
		switch c.Param("kind") {
		case "domain":
			Abort(c, fmt.Errorf("%w: order 9", apperr.ErrOrderNotFound))
		default:
			Abort(c, errors.New("connection reset"))
		}
	})
	return r
}

func TestCaller(t *testing.T) {
	r := newRouter()

	for _, h := range []string{"", "abc", "0", "-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(HeaderUserID, h)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderUserID, "12")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":12}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAbort(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail/domain", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "order_not_found", body["error"])
	assert.Equal(t, "order not found: order 9", body["message"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail/other", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal", body["error"])
	assert.Equal(t, "internal error", body["message"])
}

func TestPage(t *testing.T) {
	cases := map[string][2]int{
		"":                    {20, 0},
		"?limit=5&offset=10":  {5, 10},
		"?limit=500&offset=-": {20, 0},
	}
	for q, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+q, nil)
		limit, offset := Page(c)
		assert.Equal(t, want[0], limit, q)
		assert.Equal(t, want[1], offset, q)
	}
}
