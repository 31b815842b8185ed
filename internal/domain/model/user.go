package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Papéis de usuário
const (
	RoleAdmin    = "admin"
	RoleEmployee = "funcionario"
)

// ValidRole indica se o papel é conhecido
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

// User representa um usuário do sistema
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nome      string    `json:"nome"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin verifica se o usuário tem papel de administrador
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserEntity é a representação de banco de dados de um usuário
type UserEntity struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"not null;default:funcionario;size:20"`
	Nome         string    `gorm:"not null;size:120"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName define o nome da tabela
func (UserEntity) TableName() string {
	return "users"
}

// BeforeCreate gera o id quando ausente
func (e *UserEntity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ToModel converte a entidade sem expor o hash da senha
func (e *UserEntity) ToModel() *User {
	return &User{
		ID:        e.ID,
		Email:     e.Email,
		Nome:      e.Nome,
		Role:      e.Role,
		CreatedAt: e.CreatedAt,
	}
}
