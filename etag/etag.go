// Package etag answers repeated GETs with 304 when the body has not changed.
// Nothing is stored server side: the digest is recomputed on every request.
package etag

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
)

// bufferedWriter holds the body back so the status can still become 304.
type bufferedWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// Digest returns the quoted ETag value for a response body.
func Digest(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

func matches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == tag || candidate == "*" {
			return true
		}
	}
	return false
}

// Middleware tags successful GET responses and honours If-None-Match.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		original := c.Writer
		writer := &bufferedWriter{
			ResponseWriter: original,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		c.Writer = original
		body := writer.body.Bytes()

		if original.Status() != http.StatusOK {
			original.Write(body)
			return
		}

		tag := Digest(body)
		original.Header().Set("ETag", tag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && matches(inm, tag) {
			original.Header().Del("Content-Type")
			original.Header().Del("Content-Length")
			original.WriteHeader(http.StatusNotModified)
			original.WriteHeaderNow()
			return
		}

		original.Write(body)
	}
}
