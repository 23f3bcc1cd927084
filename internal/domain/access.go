package domain

// Role — роль аутентифицированного пользователя, полученная выше по стеку.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Valid проверяет, что роль входит в закрытый набор ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	default:
		return false
	}
}

// Requester — идентичность, от имени которой выполняется операция.
type Requester struct {
	ID   string
	Role Role
}

// CanViewOrder — единая политика доступа к заказам, чистая функция без
// побочных эффектов. Персонал видит любые заказы, клиент — только свои.
// Анонимный заказ (ownerID == "") клиенту не принадлежит.
func CanViewOrder(requester Requester, ownerID string) bool {
	switch requester.Role {
	case RoleAdmin, RoleEmployee:
		return true
	case RoleCustomer:
		return requester.ID != "" && requester.ID == ownerID
	default:
		return false
	}
}
