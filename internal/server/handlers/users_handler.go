package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/service/users"
)

// UserHandler serves account administration endpoints.
type UserHandler struct {
	svc users.UserService
}

// NewUserHandler constructs the HTTP handler adapter.
func NewUserHandler(svc users.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type accessLevelRequest struct {
	AccessLevel models.AccessLevel `json:"accessLevel"`
}

type activeRequest struct {
	Active string `json:"active"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var in models.NewUser
	if !bindJSON(c, &in) {
		return
	}
	if _, err := h.svc.Register(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *UserHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, list)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in models.UserProfile
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.UpdateProfile(c.Request.Context(), c.Param("userID"), in); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("userID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeOwnPassword answers PATCH /users/me/password.
func (h *UserHandler) ChangeOwnPassword(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckUsername answers GET /users/check-username?username=.
func (h *UserHandler) CheckUsername(c *gin.Context) {
	available, err := h.svc.UsernameAvailable(c.Request.Context(), c.Query("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, gin.H{"available": available})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), c.Param("userID"), req.Password); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetAccessLevel(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req accessLevelRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetAccessLevel(c.Request.Context(), caller, c.Param("userID"), req.AccessLevel); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetActive(c *gin.Context) {
	caller, ok := callerOf(c)
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), caller, c.Param("userID"), req.Active); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
