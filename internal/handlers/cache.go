package handlers

import (
	"net/http"

	"taskify/backend/internal/cache"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	cache cache.Cache
}

func NewCacheHandler(c cache.Cache) *CacheHandler {
	return &CacheHandler{cache: c}
}

func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.Stats())
}

func (h *CacheHandler) GetCacheHealth(c *gin.Context) {
	if err := h.cache.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"healthy": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}

func (h *CacheHandler) ClearCache(c *gin.Context) {
	if err := h.cache.DeletePattern("*"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared successfully"})
}
