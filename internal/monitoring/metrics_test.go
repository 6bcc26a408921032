package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestMetricsMiddleware(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	metrics := GetMetrics()

	if metrics.RequestCount != 1 {
		t.Errorf("Expected RequestCount to be 1, got %d", metrics.RequestCount)
	}

	if metrics.ActiveRequests != 0 {
		t.Errorf("Expected ActiveRequests to be 0 after request completion, got %d", metrics.ActiveRequests)
	}

	if metrics.ErrorCount != 0 {
		t.Errorf("Expected ErrorCount to be 0 for successful request, got %d", metrics.ErrorCount)
	}

	if len(metrics.StatusCodes) == 0 {
		t.Error("Expected status codes to be tracked")
	}

	if len(metrics.Endpoints) == 0 {
		t.Error("Expected endpoints to be tracked")
	}
}

func TestMetricsMiddleware_ErrorTracking(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})

	req, _ := http.NewRequest("GET", "/error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	metrics := GetMetrics()

	if metrics.ErrorCount != 1 {
		t.Errorf("Expected ErrorCount to be 1, got %d", metrics.ErrorCount)
	}

	if metrics.StatusCodes["Internal Server Error"] != 1 {
		t.Errorf("Expected 1 Internal Server Error, got %d", metrics.StatusCodes["Internal Server Error"])
	}
}

func TestMetricsMiddleware_MultipleRequests(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	metrics := GetMetrics()

	if metrics.RequestCount != 5 {
		t.Errorf("Expected RequestCount to be 5, got %d", metrics.RequestCount)
	}

	if metrics.StatusCodes["OK"] != 5 {
		t.Errorf("Expected 5 OK responses, got %d", metrics.StatusCodes["OK"])
	}

	if metrics.Endpoints["GET /test"] != 5 {
		t.Errorf("Expected 5 calls to GET /test, got %d", metrics.Endpoints["GET /test"])
	}
}

func TestGetMetrics_ThreadSafety(t *testing.T) {
	resetGlobalMetrics()

	done := make(chan bool)
	go func() {
		for i := 0; i < 100; i++ {
			_ = GetMetrics()
		}
		done <- true
	}()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	for i := 0; i < 100; i++ {
		req, _ := http.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	<-done

	metrics := GetMetrics()
	if metrics.RequestCount != 100 {
		t.Errorf("Expected RequestCount to be 100, got %d", metrics.RequestCount)
	}
}
