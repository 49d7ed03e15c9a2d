package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docmanage/opd-api/internal/handler"
	"github.com/docmanage/opd-api/internal/model"
	"github.com/docmanage/opd-api/internal/service/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/auth")
	{
		grp.POST("/login", h.Login)
		grp.POST("/signup", h.Signup)
	}
}

// RegisterProtectedRoutes registers the routes that need an actor.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("Invalid credentials for "+roleLabel(req.Role)+"."))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tokens))
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Password does not meet the security requirements."))
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicateIdentity):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("This Registration ID is already taken. Please choose a unique one."))
		case errors.Is(err, model.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Password does not meet the security requirements."))
		case errors.Is(err, model.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("Passwords do not match."))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

func roleLabel(role model.Role) string {
	if role == model.RoleAdmin {
		return "Administrator"
	}
	return "Doctor"
}
