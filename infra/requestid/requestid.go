package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const Header = "X-Request-ID"

// Incoming ids longer than this are replaced.
const maxLength = 128

type ctxKey struct{}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Generate returns 32 hex chars, usable as an otel trace id.
func Generate() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// Middleware keeps the caller's X-Request-ID or makes one up, and echoes it back.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxLength {
			id = Generate()
		}
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}
