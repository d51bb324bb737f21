package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrSlotNotFound is returned by slot storages when nothing was ever
	// saved under the key.
	ErrSlotNotFound = errors.New("cart slot not found")

	// ErrCorruptSlot marks slot contents that exist but cannot be decoded.
	ErrCorruptSlot = errors.New("cart slot is corrupt")
)
