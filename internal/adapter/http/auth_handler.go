package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/auth"
	"github.com/diillson/lavajato-api/internal/app/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler atende /auth
type AuthHandler struct {
	auth   *auth.Service
	users  *user.Service
	logger *zap.Logger
}

func NewAuthHandler(authService *auth.Service, users *user.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, users: users, logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Verify confirma o token atual e devolve o usuário
func (h *AuthHandler) Verify(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": u})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req ChangePasswordRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), u, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Senha alterada com sucesso"})
}

// Register cria um usuário; rota restrita a administradores
func (h *AuthHandler) Register(c *gin.Context) {
	var in user.CreateInput
	if err := bindJSON(c, &in, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Usuário criado com sucesso", "user": created})
}
