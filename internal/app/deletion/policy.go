package deletion

import "github.com/diillson/lavajato-api/internal/domain/model"

// Regras de acesso do fluxo de exclusão. Toda operação do Service passa por
// estes predicados; nenhum handler compara papéis por conta própria.

// CanRequest permite ao administrador pedir a exclusão de qualquer serviço e
// ao funcionário apenas dos seus
func CanRequest(user *model.User, service *model.ServiceRecord) bool {
	if user == nil || service == nil {
		return false
	}
	return user.IsAdmin() || service.OwnedBy(user.ID)
}

// CanDecide restringe aprovação e rejeição a administradores
func CanDecide(user *model.User) bool {
	return user.IsAdmin()
}

// CanCancel permite cancelar ao solicitante ou a um administrador
func CanCancel(user *model.User, req *model.DeletionRequest) bool {
	if user == nil || req == nil {
		return false
	}
	return user.IsAdmin() || req.RequesterID == user.ID
}

// CanView segue a mesma regra do cancelamento
func CanView(user *model.User, req *model.DeletionRequest) bool {
	return CanCancel(user, req)
}

func CanViewStats(user *model.User) bool {
	return user.IsAdmin()
}
