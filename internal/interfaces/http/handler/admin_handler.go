package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"veg_market/internal/store"
	"veg_market/pkg/logger"
)

// AdminHandler exposes the Store maintenance operations. Destructive
// actions require explicit confirmation from the caller; the core never
// prompts.
type AdminHandler struct {
	store *store.Store
	log   logger.Logger
}

func NewAdminHandler(st *store.Store, log logger.Logger) *AdminHandler {
	return &AdminHandler{store: st, log: log}
}

func (h *AdminHandler) Backup(c *gin.Context) {
	name, err := h.store.Backup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("backup created", logger.String("file", name))
	c.JSON(http.StatusCreated, gin.H{"backup": name})
}

func (h *AdminHandler) ListBackups(c *gin.Context) {
	names, err := h.store.Backups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": names})
}

type restoreRequest struct {
	File string `json:"file" binding:"required"`
}

func (h *AdminHandler) Restore(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Restore(c.Request.Context(), req.File); err != nil {
		respondError(c, err)
		return
	}
	h.log.Info("state restored from backup", logger.String("file", req.File))
	c.JSON(http.StatusOK, gin.H{"restored": req.File})
}

func (h *AdminHandler) ClearAll(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clearing all data is irreversible; pass confirm=true to proceed",
		})
		return
	}

	if err := h.store.ClearAll(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.log.Warn("all market data cleared")
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
