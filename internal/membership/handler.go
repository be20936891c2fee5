package membership

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dojobook/internal/api"
	"dojobook/internal/auth"
	"dojobook/internal/plan"
	"dojobook/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RequestMembership godoc
// @Summary      Request a membership
// @Description  Creates a pending membership for the current user. One pending or active membership per user.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateMembershipRequest  true  "Plan to request"
// @Success      201      {object}  Membership
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  eligibility.Decision
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) RequestMembership(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, decision, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanIneligible):
			c.JSON(http.StatusForbidden, decision)
		case errors.Is(err, ErrDuplicateMembership):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a pending or active membership"})
		case errors.Is(err, plan.ErrPlanNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
		case errors.Is(err, user.ErrUserNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create membership"})
		}
		return
	}

	c.JSON(http.StatusCreated, m)
}

// MyMemberships godoc
// @Summary      List own memberships
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Membership
// @Router       /memberships/me [get]
func (h *Handler) MyMemberships(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	memberships, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// CancelMembership godoc
// @Summary      Cancel membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        membershipID  path      int  true  "Membership ID"
// @Success      200           {object}  api.MessageResponse
// @Failure      403           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/cancel [post]
func (h *Handler) CancelMembership(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	isAdmin := auth.GetRole(c) == "admin"
	err = h.service.Cancel(c.Request.Context(), userID, membershipID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Membership cannot be cancelled in its current state"})
		default:
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Membership cancelled"})
}

// ListPending godoc
// @Summary      List pending membership requests
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Membership
// @Router       /admin/memberships/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	memberships, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// Approve godoc
// @Summary      Approve membership request
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        membershipID  path      int  true  "Membership ID"
// @Success      200           {object}  Membership
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	m, err := h.service.Approve(c.Request.Context(), membershipID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Membership is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to approve membership"})
		}
		return
	}

	c.JSON(http.StatusOK, m)
}

// Reject godoc
// @Summary      Reject membership request
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        membershipID  path      int            true  "Membership ID"
// @Param        request       body      RejectRequest  true  "Rejection reason"
// @Success      200           {object}  api.MessageResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      409           {object}  api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err = h.service.Reject(c.Request.Context(), membershipID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Membership is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to reject membership"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Membership rejected"})
}

// ProcessUpgrades godoc
// @Summary      Run the beginner upgrade sweep
// @Description  Expires due beginner memberships and opens pending requests on their upgrade plans. Intended for a cron-style caller.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /admin/memberships/process-upgrades [post]
func (h *Handler) ProcessUpgrades(c *gin.Context) {
	count, err := h.service.ProcessBeginnerUpgrades(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Upgrade sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": count})
}
