package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest transparently unwraps gzip encoded request bodies.
// Encodings other than gzip and identity are rejected with 415.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := strings.TrimSpace(strings.ToLower(c.GetHeader("Content-Encoding")))
		switch {
		case encoding == "" || encoding == "identity":
			c.Next()
			return
		case strings.Contains(encoding, "gzip"):
		default:
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
			return
		}

		compressed := c.Request.Body
		reader, err := gzip.NewReader(compressed)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		defer reader.Close()
		defer compressed.Close()

		c.Request.Body = io.NopCloser(reader)
		c.Request.Header.Del("Content-Encoding")
		c.Next()
	}
}
