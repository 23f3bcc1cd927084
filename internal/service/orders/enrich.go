package orders

import (
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// enrichOwner дополняет заказ отображаемыми полями владельца.
// Обогащение best-effort: сбой внешнего сервиса пользователей не
// проваливает чтение заказа, поля остаются пустыми.
func (s *Service) enrichOwner(order domain.Order) OrderView {
	view := OrderView{Order: order}
	if order.OwnerID == "" || s.users == nil {
		return view
	}

	profile, err := s.users.Profile(order.OwnerID)
	if err != nil {
		s.logger.WithError(err).WithField("owner_id", order.OwnerID).
			Warn("failed to enrich order owner")
		return view
	}

	view.OwnerFirstName = profile.FirstName
	view.OwnerLastName = profile.LastName
	view.OwnerEmail = profile.Email
	return view
}
