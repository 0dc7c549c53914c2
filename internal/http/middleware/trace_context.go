package middleware

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/atlas-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// AttachTraceContext tags the request context with trace, request and route ids, so
// aggregate and gorm logs join the access log. An active span's trace id wins; an inbound
// X-Trace-Id is only kept when it is a well-formed W3C trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			TraceID:   traceIDFor(c),
			RequestID: requestIDFor(c),
			Route:     c.FullPath(),
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", td.TraceID)
		c.Set("request_id", td.RequestID)
		h := c.Writer.Header()
		h.Set(headerTraceID, td.TraceID)
		h.Set(headerRequestID, td.RequestID)
		c.Next()
	}
}

func traceIDFor(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if id, err := trace.TraceIDFromHex(strings.TrimSpace(c.GetHeader(headerTraceID))); err == nil {
		return id.String()
	}
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

func requestIDFor(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" || len(id) > maxRequestIDLen || strings.IndexFunc(id, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return uuid.NewString()
	}
	return id
}
