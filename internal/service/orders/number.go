package orders

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// numberPrefix сохраняет человекочитаемый префикс номеров заказов.
const numberPrefix = "ORD-"

// NumberGenerator выдаёт уникальные номера заказов вида ORD-<ULID>.
// ULID упорядочен по времени создания и устойчив к коллизиям при
// конкурентном создании заказов, в отличие от номера из отметки времени.
type NumberGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewNumberGenerator создаёт генератор с монотонным источником энтропии.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next возвращает следующий номер заказа. Монотонный источник требует
// сериализации, поэтому вызовы защищены мьютексом.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy)
	return numberPrefix + id.String()
}
