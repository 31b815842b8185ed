package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler atende /users (somente administradores)
type UserHandler struct {
	users  *user.Service
	logger *zap.Logger
}

func NewUserHandler(users *user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c *gin.Context) {
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

func (h *UserHandler) Update(c *gin.Context) {
	var in user.UpdateInput
	if err := bindJSON(c, &in, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.users.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário atualizado com sucesso", "user": updated})
}

func (h *UserHandler) Delete(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	deleted, err := h.users.Delete(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário excluído com sucesso", "deletedUser": deleted})
}

func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context(), c.Param("id"), c.Query("period"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
