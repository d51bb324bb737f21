package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/hamba/avro/v2"
)

// CartSnapshotVersion is the only record version this build writes.
const CartSnapshotVersion = 1

// MaxLineQty is the largest quantity a snapshot line may carry.
const MaxLineQty = math.MaxInt32

var (
	ErrInvalidSnapshot    = errors.New("invalid cart snapshot")
	ErrUnsupportedVersion = errors.New("unsupported cart snapshot version")
)

const CartSnapshotSchemaTextV1 = `{
	"type": "record",
	"namespace": "carts",
	"name": "cart_snapshot",
	"fields": [
		{"name": "version", "type": "int"},
		{"name": "lines", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "cart_line",
				"fields": [
					{"name": "id", "type": "string"},
					{"name": "qty", "type": "long"}
				]
			}
		}}
	]
}`

type (
	CartSnapshotV1 struct {
		Version int          `avro:"version" json:"version"`
		Lines   []CartLineV1 `avro:"lines" json:"lines"`
	}

	CartLineV1 struct {
		ID  string `avro:"id" json:"id"`
		Qty int    `avro:"qty" json:"qty"`
	}
)

var cartSnapshotV1Avro = avro.MustParse(CartSnapshotSchemaTextV1)

func CartSnapshotV1Avro() avro.Schema {
	return cartSnapshotV1Avro
}

// NewCartSnapshot stamps lines with the current version.
func NewCartSnapshot(lines []CartLineV1) CartSnapshotV1 {
	if lines == nil {
		lines = []CartLineV1{}
	}
	return CartSnapshotV1{Version: CartSnapshotVersion, Lines: lines}
}

// Validate rejects empty ids, quantities outside [1, MaxLineQty] and
// duplicate ids.
func (s CartSnapshotV1) Validate() error {
	if s.Version != CartSnapshotVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}

	seen := make(map[string]struct{}, len(s.Lines))
	for i, l := range s.Lines {
		if l.ID == "" {
			return fmt.Errorf("%w: line %d: empty id", ErrInvalidSnapshot, i)
		}
		if l.Qty < 1 || l.Qty > MaxLineQty {
			return fmt.Errorf("%w: line %d: qty %d", ErrInvalidSnapshot, i, l.Qty)
		}
		if _, ok := seen[l.ID]; ok {
			return fmt.Errorf("%w: line %d: duplicate id %q", ErrInvalidSnapshot, i, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}

func EncodeCartSnapshotJSON(s CartSnapshotV1) ([]byte, error) {
	const op = "EncodeCartSnapshotJSON"
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// DecodeCartSnapshotJSON parses a slot value. A bare array of lines is the
// unversioned layout of the first storefront release and is migrated to
// the current version.
func DecodeCartSnapshotJSON(data []byte) (CartSnapshotV1, error) {
	const op = "DecodeCartSnapshotJSON"

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return CartSnapshotV1{}, fmt.Errorf("%s: %w: empty", op, ErrInvalidSnapshot)
	}

	var s CartSnapshotV1
	switch data[0] {
	case '[':
		var lines []CartLineV1
		if err := strictUnmarshal(data, &lines); err != nil {
			return CartSnapshotV1{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidSnapshot, err)
		}
		s = NewCartSnapshot(lines)
	case '{':
		if err := strictUnmarshal(data, &s); err != nil {
			return CartSnapshotV1{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidSnapshot, err)
		}
		if s.Lines == nil {
			s.Lines = []CartLineV1{}
		}
	default:
		return CartSnapshotV1{}, fmt.Errorf("%s: %w: not a record", op, ErrInvalidSnapshot)
	}

	if err := s.Validate(); err != nil {
		return CartSnapshotV1{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
