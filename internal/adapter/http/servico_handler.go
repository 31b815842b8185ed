package http

import (
	"net/http"

	"github.com/diillson/lavajato-api/internal/app/servico"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServicoHandler atende /servicos
type ServicoHandler struct {
	servicos *servico.Service
	logger   *zap.Logger
}

func NewServicoHandler(servicos *servico.Service, logger *zap.Logger) *ServicoHandler {
	return &ServicoHandler{servicos: servicos, logger: logger}
}

// DeleteServicoRequest é o corpo opcional de DELETE /servicos/:id
type DeleteServicoRequest struct {
	Reason string `json:"reason"`
}

func (h *ServicoHandler) List(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	q := servico.ListQuery{FuncionarioID: c.Query("funcionarioId")}
	if q.Page, err = pageQuery(c); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if q.DataInicio, err = dateQuery(c, "dataInicio"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if q.DataFim, err = dateQuery(c, "dataFim"); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.servicos.List(c.Request.Context(), u, q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ServicoHandler) Get(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	record, err := h.servicos.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ServicoHandler) Create(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var in servico.CreateInput
	if err := bindJSON(c, &in, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	record, err := h.servicos.Create(c.Request.Context(), u, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *ServicoHandler) Update(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var in servico.UpdateInput
	if err := bindJSON(c, &in, false); err != nil {
		respondError(c, h.logger, err)
		return
	}

	record, err := h.servicos.Update(c.Request.Context(), u, c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete exclui (administrador) ou abre uma solicitação de exclusão
// (funcionário, responde 201)
func (h *ServicoHandler) Delete(c *gin.Context) {
	u, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req DeleteServicoRequest
	if err := bindJSON(c, &req, true); err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.servicos.Delete(c.Request.Context(), u, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if !result.Deleted {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
