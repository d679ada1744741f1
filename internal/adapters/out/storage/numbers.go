package storage

import (
	"context"
	"fmt"

	"logistics/internal/adapters/out/storage/orderrepo"
	"logistics/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// orderNumbers generates order numbers for the active engine.
type orderNumbers struct {
	engine Engine
}

var _ orderrepo.NumberGenerator = orderNumbers{}

// NextOrderNumber draws from the sequence when the engine has one. Otherwise it
// starts at count+1 and skips numbers that are already taken. Two writers on the
// fallback engine can still pick the same number; the UNIQUE constraint then
// rejects the second insert.
func (n orderNumbers) NextOrderNumber(ctx context.Context, db *gorm.DB) (string, error) {
	if n.engine.SupportsSequences() {
		var seq int64
		if err := db.WithContext(ctx).Raw(n.engine.NextOrderNumberSQL()).Scan(&seq).Error; err != nil {
			return "", fmt.Errorf("draw %s: %w", orderNumberSequence, err)
		}
		return order.FormatNumber(seq), nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&orderrepo.OrderDTO{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}

	for seq := count + 1; ; seq++ {
		number := order.FormatNumber(seq)

		var taken int64
		err := db.WithContext(ctx).Model(&orderrepo.OrderDTO{}).
			Where("order_number = ?", number).
			Count(&taken).Error
		if err != nil {
			return "", fmt.Errorf("check order number %s: %w", number, err)
		}
		if taken == 0 {
			return number, nil
		}
	}
}
