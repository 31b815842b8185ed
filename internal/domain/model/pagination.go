package model

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxPage mantém o deslocamento dentro de int32 em qualquer banco
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// Page é a janela pedida pelo cliente
type Page struct {
	Page  int
	Limit int
}

// NewPage normaliza página e limite: página entre 1 e MaxPage, limite
// entre 1 e 100
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset retorna o deslocamento para a consulta
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination acompanha toda resposta paginada
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination calcula o total de páginas
func NewPagination(p Page, total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}
