package handlers

import (
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsHandler struct {
	db           *gorm.DB
	statsService services.StatsService
}

func NewStatsHandler(db *gorm.DB, statsService services.StatsService) *StatsHandler {
	return &StatsHandler{db: db, statsService: statsService}
}

func (h *StatsHandler) GetGeneralStats(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GeneralStats(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetStatsByPriority(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.ByPriority(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"priorities": stats})
}

func (h *StatsHandler) GetStatsByCategory(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.ByCategory(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": stats})
}

func (h *StatsHandler) GetWeeklyProductivity(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	series, err := h.statsService.WeeklyProductivity(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": series})
}

func (h *StatsHandler) GetMonthlyProductivity(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	series, err := h.statsService.MonthlyProductivity(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": series})
}
