package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	prev := utils.Logger
	utils.Logger = zap.New(core)
	defer func() { utils.Logger = prev }()

	r := gin.New()
	r.Use(Logger(), CORS())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health?x=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/health", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 2) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "/health", fields["path"])
		assert.Equal(t, "x=1", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	}
}
