package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Tipos de erro comuns
var (
	ErrNotFound       = errors.New("recurso não encontrado")
	ErrBadRequest     = errors.New("requisição inválida")
	ErrUnauthorized   = errors.New("não autenticado")
	ErrForbidden      = errors.New("acesso negado")
	ErrConflict       = errors.New("conflito com o estado atual do recurso")
	ErrInternalServer = errors.New("erro interno do servidor")
)

// APIError representa um erro da API com informações adicionais
type APIError struct {
	Code        int         `json:"-"`
	Message     string      `json:"error"`
	Details     interface{} `json:"details,omitempty"`
	OriginalErr error       `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

// Unwrap permite usar errors.Is e errors.As
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// New cria um novo APIError
func New(code int, message string, err error) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		OriginalErr: err,
	}
}

// WithDetails adiciona detalhes ao erro
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// sentinel garante que errors.Is funcione mesmo sem erro de origem
func sentinel(err, fallback error) error {
	if err == nil {
		return fallback
	}
	return fmt.Errorf("%w: %w", fallback, err)
}

// NotFound cria um erro 404
func NotFound(message string, err error) *APIError {
	if message == "" {
		message = "Recurso não encontrado"
	}
	return New(http.StatusNotFound, message, sentinel(err, ErrNotFound))
}

// BadRequest cria um erro 400
func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, message, sentinel(err, ErrBadRequest))
}

// Unauthorized cria um erro 401
func Unauthorized(message string, err error) *APIError {
	if message == "" {
		message = "Autenticação necessária"
	}
	return New(http.StatusUnauthorized, message, sentinel(err, ErrUnauthorized))
}

// Forbidden cria um erro 403
func Forbidden(message string, err error) *APIError {
	if message == "" {
		message = "Acesso negado"
	}
	return New(http.StatusForbidden, message, sentinel(err, ErrForbidden))
}

// Conflict cria um erro 409
func Conflict(message string, err error) *APIError {
	return New(http.StatusConflict, message, sentinel(err, ErrConflict))
}

// InternalServer cria um erro 500
func InternalServer(message string, err error) *APIError {
	if message == "" {
		message = "Erro interno do servidor"
	}
	return New(http.StatusInternalServerError, message, sentinel(err, ErrInternalServer))
}

// StatusCode extrai o código HTTP de um erro, 500 quando não for um APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return http.StatusInternalServerError
}
