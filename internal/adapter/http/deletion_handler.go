package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/deletion"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeletionHandler atende /deletion-requests
type DeletionHandler struct {
	deletion *deletion.Service
	logger   *zap.Logger
}

func NewDeletionHandler(service *deletion.Service, logger *zap.Logger) *DeletionHandler {
	return &DeletionHandler{deletion: service, logger: logger}
}

// CreateDeletionRequest é o corpo de POST /deletion-requests
type CreateDeletionRequest struct {
	ServiceID string `json:"serviceId"`
	Reason    string `json:"reason"`
}

// DecisionRequest é o corpo de PUT /deletion-requests/:id/decision
type DecisionRequest struct {
	Decision string `json:"decision"`
}

func (h *DeletionHandler) Create(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req CreateDeletionRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.deletion.RequestDeletion(c.Request.Context(), u, req.ServiceID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Solicitação de exclusão criada com sucesso",
		"request": created,
	})
}

func (h *DeletionHandler) List(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := pageQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.deletion.List(c.Request.Context(), u, c.Query("status"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DeletionHandler) ListMine(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := pageQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.deletion.ListMine(c.Request.Context(), u, c.Query("status"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DeletionHandler) Get(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	req, err := h.deletion.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *DeletionHandler) Decide(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req DecisionRequest
	if err := bindJSON(c, &req, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.deletion.Decide(c.Request.Context(), u, c.Param("id"), req.Decision)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DeletionHandler) Cancel(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.deletion.Cancel(c.Request.Context(), u, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Solicitação cancelada com sucesso"})
}

func (h *DeletionHandler) Stats(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.deletion.Stats(c.Request.Context(), u, c.Query("period"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
