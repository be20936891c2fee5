package trial

import (
	"errors"
	"net/http"
	"strconv"

	"dojobook/internal/api"
	"dojobook/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetSettings godoc
// @Summary      Trial system settings
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Settings
// @Router       /admin/trial-settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update trial system settings
// @Description  Changes apply prospectively: lowering the allowance never re-grants consumed trials.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateSettingsRequest  true  "Settings"
// @Success      200      {object}  Settings
// @Failure      400      {object}  api.ErrorResponse
// @Router       /admin/trial-settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	adminID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), req, adminID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// ResetTrial godoc
// @Summary      Reset trial usage
// @Description  Zeroes trial_classes_used for one user, or for all users when user_id is 0.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetRequest  true  "Reset target"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/trial-reset [post]
func (h *Handler) ResetTrial(c *gin.Context) {
	adminID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.service.ResetTrial(c.Request.Context(), req.UserID, adminID, req.Notes)
	if err != nil {
		if errors.Is(err, ErrResetTargetNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to reset trial"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Trial usage reset"})
}

// Audit godoc
// @Summary      Trial audit log
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   AuditEntry
// @Router       /admin/trial-audit [get]
func (h *Handler) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.service.Audit(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
