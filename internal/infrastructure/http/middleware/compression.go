package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// Encodings in order of preference
const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

var compressibleTypes = []string{
	"application/json",
	"application/problem+json",
	"text/plain",
}

// Compression encodes JSON and text responses with brotli or gzip,
// whichever the client prefers, favouring brotli on a tie
func (m *Middleware) Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		writer := &compressWriter{ResponseWriter: c.Writer, encoding: encoding}
		c.Writer = writer
		defer writer.Close()

		c.Next()
	}
}

// negotiateEncoding picks the supported encoding with the highest q-value
func negotiateEncoding(header string) string {
	best, bestQ := "", 0.0
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name != encodingBrotli && name != encodingGzip {
			continue
		}

		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		if q > bestQ || (q == bestQ && name == encodingBrotli) {
			best, bestQ = name, q
		}
	}
	return best
}

// compressWriter decides on the first write whether the body is worth encoding
type compressWriter struct {
	gin.ResponseWriter
	encoding string
	encoder  io.WriteCloser
	decided  bool
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decide()
	}
	if w.encoder != nil {
		return w.encoder.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) decide() {
	w.decided = true

	header := w.ResponseWriter.Header()
	if header.Get("Content-Encoding") != "" || !compressible(header.Get("Content-Type")) {
		return
	}

	header.Set("Content-Encoding", w.encoding)
	header.Add("Vary", "Accept-Encoding")
	header.Del("Content-Length")

	switch w.encoding {
	case encodingBrotli:
		w.encoder = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
	default:
		w.encoder, _ = gzip.NewWriterLevel(w.ResponseWriter, gzip.DefaultCompression)
	}
}

// Close flushes the encoder
func (w *compressWriter) Close() {
	if w.encoder != nil {
		_ = w.encoder.Close()
	}
}

func compressible(contentType string) bool {
	mainType, _, _ := strings.Cut(contentType, ";")
	mainType = strings.TrimSpace(mainType)
	for _, t := range compressibleTypes {
		if strings.EqualFold(mainType, t) {
			return true
		}
	}
	return false
}
