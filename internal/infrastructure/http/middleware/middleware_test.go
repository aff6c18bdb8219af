package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alchemorsel/nutrition/internal/infrastructure/config"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MiddlewareTestSuite struct {
	suite.Suite
	cfg *config.Config
}

func (suite *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	suite.Require().NoError(err)
	suite.cfg = cfg
}

func (suite *MiddlewareTestSuite) router(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": strings.Repeat("kefir ", 200)})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func (suite *MiddlewareTestSuite) do(r http.Handler, method, path string, header map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (suite *MiddlewareTestSuite) TestRequestID() {
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.RequestID())

	suite.Run("GeneratesID_WhenMissing", func() {
		w := suite.do(r, http.MethodGet, "/json", nil, "")
		suite.NotEmpty(w.Header().Get("X-Request-ID"))
	})

	suite.Run("PropagatesID_WhenProvided", func() {
		w := suite.do(r, http.MethodGet, "/json", map[string]string{"X-Request-ID": "abc-123"}, "")
		suite.Equal("abc-123", w.Header().Get("X-Request-ID"))
	})
}

func (suite *MiddlewareTestSuite) TestRecovery_ShouldReturnInternalError() {
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.RequestID(), m.Recovery())

	w := suite.do(r, http.MethodGet, "/panic", nil, "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "INTERNAL_ERROR")
}

func (suite *MiddlewareTestSuite) TestRateLimit() {
	suite.cfg.RateLimit.RequestsPerMin = 1
	suite.cfg.RateLimit.BurstSize = 2
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.RateLimit())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, suite.do(r, http.MethodGet, "/json", nil, "").Code)
	}

	suite.Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func (suite *MiddlewareTestSuite) TestBodyLimit_ShouldRejectLargeBodies() {
	suite.cfg.Server.MaxBodyBytes = 8
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.BodyLimit())

	small := suite.do(r, http.MethodPost, "/echo", nil, "tiny")
	large := suite.do(r, http.MethodPost, "/echo", nil, "far too large for the limit")

	suite.Equal(http.StatusOK, small.Code)
	suite.Equal("tiny", small.Body.String())
	suite.Equal(http.StatusRequestEntityTooLarge, large.Code)
}

func (suite *MiddlewareTestSuite) TestSecurityHeaders() {
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.Security())

	w := suite.do(r, http.MethodGet, "/json", nil, "")

	suite.Equal("nosniff", w.Header().Get("X-Content-Type-Options"))
	suite.Equal("DENY", w.Header().Get("X-Frame-Options"))
	suite.Equal("no-store", w.Header().Get("Cache-Control"))
}

func (suite *MiddlewareTestSuite) TestCompression() {
	m := New(suite.cfg, nil, zap.NewNop())
	r := suite.router(m.Compression())
	plain := suite.do(r, http.MethodGet, "/json", nil, "").Body.String()

	suite.Run("Brotli_WhenPreferred", func() {
		w := suite.do(r, http.MethodGet, "/json", map[string]string{"Accept-Encoding": "gzip, br"}, "")

		suite.Equal("br", w.Header().Get("Content-Encoding"))
		decoded, err := io.ReadAll(brotli.NewReader(w.Body))
		suite.Require().NoError(err)
		suite.Equal(plain, string(decoded))
	})

	suite.Run("Gzip_WhenBrotliRefused", func() {
		w := suite.do(r, http.MethodGet, "/json", map[string]string{"Accept-Encoding": "br;q=0, gzip"}, "")

		suite.Equal("gzip", w.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(w.Body)
		suite.Require().NoError(err)
		decoded, err := io.ReadAll(reader)
		suite.Require().NoError(err)
		suite.Equal(plain, string(decoded))
	})

	suite.Run("Identity_WhenNotAccepted", func() {
		w := suite.do(r, http.MethodGet, "/json", nil, "")

		suite.Empty(w.Header().Get("Content-Encoding"))
	})
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func TestNegotiateEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"identity", ""},
		{"gzip", "gzip"},
		{"br", "br"},
		{"gzip, br", "br"},
		{"gzip;q=1.0, br;q=0.5", "gzip"},
		{"br;q=0, gzip;q=0", ""},
		{"deflate, GZIP", "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, negotiateEncoding(tt.header))
		})
	}
}

func TestCompressible(t *testing.T) {
	require.True(t, compressible("application/json; charset=utf-8"))
	require.True(t, compressible("text/plain"))
	require.False(t, compressible("image/png"))
	require.False(t, compressible(""))
}
