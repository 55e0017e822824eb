package telemetry_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/dj0804/GrievanceInsight/internal/telemetry"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	provider := telemetry.NewProvider()
	router := gin.New()
	router.Use(provider.Middleware())
	router.GET("/grievances/category/:category", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/grievances/category/Mess", "/grievances/category/Hostel", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	requests := provider.Metrics.HTTPRequests
	assert.InDelta(t, 2, testutil.ToFloat64(requests.WithLabelValues("GET", "/grievances/category/:category", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(requests.WithLabelValues("GET", "unmatched", "404")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(provider.Metrics.HTTPActiveRequests), 0)
}

func TestMiddleware_NilProvider(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	var provider *telemetry.Provider
	router := gin.New()
	router.Use(provider.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
