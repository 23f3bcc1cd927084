package domain

import "github.com/shopspring/decimal"

// UserProfile — отображаемые поля владельца заказа из внешнего сервиса
// пользователей. Используется только для обогащения ответов.
type UserProfile struct {
	FirstName string
	LastName  string
	Email     string
}

// UserDirectory описывает read-only взаимодействие с сервисом пользователей.
type UserDirectory interface {
	// Exists проверяет, существует ли пользователь с данным идентификатором.
	Exists(id string) (bool, error)
	// Profile возвращает отображаемые поля пользователя.
	Profile(id string) (UserProfile, error)
}

// ProductInfo — отображаемые поля товара из внешнего каталога.
type ProductInfo struct {
	Name         string
	CurrentPrice decimal.Decimal
}

// ServiceInfo — отображаемые поля услуги из внешнего каталога.
type ServiceInfo struct {
	Name  string
	Price decimal.Decimal
}

// ProductCatalog описывает read-only взаимодействие с каталогом товаров.
type ProductCatalog interface {
	Product(ref string) (ProductInfo, error)
}

// ServiceCatalog описывает read-only взаимодействие с каталогом услуг.
type ServiceCatalog interface {
	Service(ref string) (ServiceInfo, error)
}
