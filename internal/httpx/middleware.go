package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/metrics"
)

// HeaderUserID carries the caller id set by the authenticating gateway.
const HeaderUserID = "X-User-ID"

const callerKey = "caller"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get("rid")
		fields := []zap.Field{
			zap.Any("rid", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		log.Info("http", fields...)
	}
}

// Metrics records request count and latency per route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Writer.Status(), time.Since(start))
	}
}

// Caller requires a positive numeric X-User-ID and stores it for CallerID.
func Caller() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(HeaderUserID), 10, 64)
		if err != nil || id <= 0 {
			Abort(c, apperr.ErrUnauthenticated)
			return
		}
		c.Set(callerKey, id)
		c.Next()
	}
}

// CallerID returns the id stored by Caller.
func CallerID(c *gin.Context) int64 {
	return c.GetInt64(callerKey)
}

// Abort writes err as {"error": code, "message": msg} with its mapped status.
// Errors outside apperr are logged through c.Error and reported as internal.
func Abort(c *gin.Context, err error) {
	ae := apperr.From(err)
	msg := err.Error()
	if ae == apperr.Internal {
		_ = c.Error(err)
		msg = ae.Msg
	}
	c.AbortWithStatusJSON(ae.Status, gin.H{"error": ae.Code, "message": msg})
}

// BadRequest aborts with invalid_input and a specific message.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": apperr.ErrInvalidInput.Code, "message": msg})
}

// ParamID parses a positive int64 path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// Page reads limit/offset query parameters, clamping limit to [1,100].
func Page(c *gin.Context) (limit, offset int) {
	limit, offset = 20, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
