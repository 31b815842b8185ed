package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/diillson/lavajato-api/internal/domain/model"
	"github.com/diillson/lavajato-api/internal/infra/middleware"
	apperrors "github.com/diillson/lavajato-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// respondError escreve {"error": ..., "details": ...} com o status do
// APIError. Erros sem tipo viram 500 com mensagem genérica.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		logger.Error("erro não tratado",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	if apiErr.Code >= http.StatusInternalServerError {
		logger.Error("falha ao processar requisição",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(apiErr))
	}

	body := gin.H{"error": apiErr.Message}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.JSON(apiErr.Code, body)
}

// bindJSON decodifica o corpo; corpo vazio é aceito quando optional
func bindJSON(c *gin.Context, dst interface{}, optional bool) error {
	if optional && (c.Request.Body == nil || c.Request.ContentLength == 0) {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.BadRequest("Corpo da requisição inválido", err).WithDetails(err.Error())
	}
	return nil
}

func currentUser(c *gin.Context) (*model.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, apperrors.Unauthorized("", nil)
	}
	return user, nil
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.BadRequest(fmt.Sprintf("Parâmetro %s inválido", key), err)
	}
	return n, nil
}

// pageQuery lê page e limit, já normalizados
func pageQuery(c *gin.Context) (model.Page, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return model.Page{}, err
	}
	limit, err := intQuery(c, "limit", model.DefaultPageLimit)
	if err != nil {
		return model.Page{}, err
	}
	return model.NewPage(page, limit), nil
}

// dateQuery lê uma data YYYY-MM-DD em UTC; nil quando ausente
func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, apperrors.BadRequest(fmt.Sprintf("Parâmetro %s inválido, use AAAA-MM-DD", key), err)
	}
	return &t, nil
}
