package directory

import (
	"sync"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// StaticUserDirectory — in-process реализация UserDirectory поверх
// заранее загруженного набора профилей. Используется, пока внешний
// сервис пользователей не подключён.
type StaticUserDirectory struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

// NewStaticUserDirectory возвращает пустой справочник пользователей.
func NewStaticUserDirectory() *StaticUserDirectory {
	return &StaticUserDirectory{profiles: make(map[string]domain.UserProfile)}
}

// Seed добавляет или заменяет профиль пользователя.
func (d *StaticUserDirectory) Seed(id string, profile domain.UserProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[id] = profile
}

// Exists проверяет наличие пользователя в справочнике.
func (d *StaticUserDirectory) Exists(id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.profiles[id]
	return ok, nil
}

// Profile возвращает отображаемые поля пользователя.
func (d *StaticUserDirectory) Profile(id string) (domain.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	profile, ok := d.profiles[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrOwnerNotFound
	}
	return profile, nil
}

var _ domain.UserDirectory = (*StaticUserDirectory)(nil)

// StaticProductCatalog — in-process реализация ProductCatalog.
type StaticProductCatalog struct {
	mu       sync.RWMutex
	products map[string]domain.ProductInfo
}

// NewStaticProductCatalog возвращает пустой каталог товаров.
func NewStaticProductCatalog() *StaticProductCatalog {
	return &StaticProductCatalog{products: make(map[string]domain.ProductInfo)}
}

// Seed добавляет или заменяет товар в каталоге.
func (c *StaticProductCatalog) Seed(ref string, product domain.ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[ref] = product
}

// Product возвращает отображаемые поля товара.
func (c *StaticProductCatalog) Product(ref string) (domain.ProductInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[ref]
	if !ok {
		return domain.ProductInfo{}, domain.ErrNotFound
	}
	return product, nil
}

var _ domain.ProductCatalog = (*StaticProductCatalog)(nil)

// StaticServiceCatalog — in-process реализация ServiceCatalog.
type StaticServiceCatalog struct {
	mu       sync.RWMutex
	services map[string]domain.ServiceInfo
}

// NewStaticServiceCatalog возвращает пустой каталог услуг.
func NewStaticServiceCatalog() *StaticServiceCatalog {
	return &StaticServiceCatalog{services: make(map[string]domain.ServiceInfo)}
}

// Seed добавляет или заменяет услугу в каталоге.
func (c *StaticServiceCatalog) Seed(ref string, service domain.ServiceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[ref] = service
}

// Service возвращает отображаемые поля услуги.
func (c *StaticServiceCatalog) Service(ref string) (domain.ServiceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	service, ok := c.services[ref]
	if !ok {
		return domain.ServiceInfo{}, domain.ErrNotFound
	}
	return service, nil
}

var _ domain.ServiceCatalog = (*StaticServiceCatalog)(nil)
