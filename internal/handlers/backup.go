package handlers

import (
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BackupHandler struct {
	db            *gorm.DB
	backupService services.BackupService
}

func NewBackupHandler(db *gorm.DB, backupService services.BackupService) *BackupHandler {
	return &BackupHandler{db: db, backupService: backupService}
}

func (h *BackupHandler) ExportData(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	data, err := h.backupService.Export(h.db, ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=taskify-export.json")
	c.JSON(http.StatusOK, data)
}

func (h *BackupHandler) ImportData(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var data services.ExportData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.backupService.Import(h.db, ownerID, data)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BackupHandler) DeleteAllData(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.backupService.DeleteAllData(h.db, ownerID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
