package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/client"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientHandler atende /clientes
type ClientHandler struct {
	clients *client.Service
	logger  *zap.Logger
}

func NewClientHandler(clients *client.Service, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, logger: logger}
}

func (h *ClientHandler) List(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.clients.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ClientHandler) Get(c *gin.Context) {
	summary, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ClientHandler) Services(c *gin.Context) {
	records, err := h.clients.Services(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"servicos": records})
}

func (h *ClientHandler) Update(c *gin.Context) {
	var in client.UpdateInput
	if err := bindJSON(c, &in, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.clients.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cliente atualizado com sucesso", "cliente": updated})
}

func (h *ClientHandler) Stats(c *gin.Context) {
	stats, err := h.clients.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
