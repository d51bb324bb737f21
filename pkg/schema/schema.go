package schema

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// AvroCartSnapshot encodes snapshots without schema-registry framing.
type AvroCartSnapshot struct{}

func (AvroCartSnapshot) Encode(v any) ([]byte, error) {
	if err := validateSnapshot(v); err != nil {
		return nil, err
	}
	return AvroEncodeFn(CartSnapshotV1Avro())(v)
}

func (AvroCartSnapshot) Decode(data []byte, v any) error {
	return AvroDecodeFn(CartSnapshotV1Avro())(data, v)
}

// validateSnapshot checks snapshot values before they reach the wire.
// Other values are left to the avro encoder.
func validateSnapshot(v any) error {
	const op = "validateSnapshot"

	var err error
	switch s := v.(type) {
	case CartSnapshotV1:
		err = s.Validate()
	case *CartSnapshotV1:
		if s != nil {
			err = s.Validate()
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
