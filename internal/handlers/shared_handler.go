package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aarogyam/aarogyam/internal/middleware"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/gin-gonic/gin"
)

// Home sends signed-in users to their dashboard.
func (h *Handler) Home(c *gin.Context) {
	if p, ok := middleware.CurrentPrincipal(c); ok {
		c.Redirect(http.StatusFound, p.Role.DashboardPath())
		return
	}
	c.Redirect(http.StatusFound, "/auth/login")
}

// DoctorSlots lists a doctor's bookable slots, optionally for one date.
func (h *Handler) DoctorSlots(c *gin.Context) {
	id, err := idParam(c, "doctorId")
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	slots, err := h.profiles.Slots(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		status, msg := classify(err)
		utils.Error(c, status, msg)
		return
	}
	utils.Success(c, "Available slots", gin.H{"slots": slots})
}

// ServeFile streams an upload kept in GridFS.
func (h *Handler) ServeFile(c *gin.Context) {
	if h.files == nil {
		h.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	info, err := h.files.Stat(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.fail(c, err, "")
		return
	}

	c.Header("Content-Type", info.ContentType)
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Name))
	c.Status(http.StatusOK)
	if err := h.files.Stream(ctx, id, c.Writer); err != nil {
		h.logger.Warn().Err(err).Str("file_id", id).Msg("file stream interrupted")
	}
}

// ServeCertificate sends a certificate PDF to its patient or a treating doctor.
func (h *Handler) ServeCertificate(c *gin.Context) {
	viewer, _ := middleware.CurrentPrincipal(c)
	full, err := h.certificates.Locate(c.Request.Context(), viewer, c.Param("name"))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(full)))
	c.File(full)
}

// Health reports liveness and, when configured, database reachability.
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "time": time.Now().In(h.loc).Format(time.RFC3339)}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("health check failed")
			body["status"] = "degraded"
			body["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "up"
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) NotFound(c *gin.Context) {
	if wantsJSON(c) {
		utils.NotFound(c, "Page not found")
		return
	}
	h.errorPage(c, http.StatusNotFound, "Page not found")
}

// InternalError is the response written after a recovered panic.
func (h *Handler) InternalError(c *gin.Context) {
	if wantsJSON(c) {
		utils.InternalServerError(c, genericError)
		return
	}
	h.errorPage(c, http.StatusInternalServerError, genericError)
}
