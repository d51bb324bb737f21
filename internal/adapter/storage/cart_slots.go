package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SlotStorage = (*CartSlotsRepository)(nil)

// A CartSlotsRepository keeps one row per slot key in cart_slots.
type CartSlotsRepository struct {
	sqldb   sqldb
	dialect Dialect
}

func NewCartSlotsRepository(db SQLDB) CartSlotsRepository {
	return CartSlotsRepository{sqldb: db, dialect: db.dialect}
}

func (r CartSlotsRepository) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "CartSlotsRepository.LoadCart"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var payload string
	err := r.sqldb.QueryRowContext(ctx, r.dialect.load, key).Scan(&payload)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := decodeLines([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func (r CartSlotsRepository) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) error {
	const op = "CartSlotsRepository.SaveCart"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = r.sqldb.ExecContext(ctx, r.dialect.upsert, key, string(payload))
	if err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}
