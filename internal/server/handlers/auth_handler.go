package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bizdesk/internal/server/middleware"
	"github.com/mamadbah2/bizdesk/internal/service/auth"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	svc auth.AuthService
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc auth.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, res)
}

// Logout ends the session the request was authenticated with.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
