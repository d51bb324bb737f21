package schema_test

import (
	"context"
	"testing"

	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeCartSnapshotV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeCartSnapshotV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeCartSnapshotV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeCartSnapshotV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "storefront-cart-slots-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.CartSnapshotSchemaTextV1,
		).Return(7, nil)

		serde, err := schema.NewSerdeCartSnapshotV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
		schemaIdentifier.AssertExpectations(t)

		v1 := schema.NewCartSnapshot([]schema.CartLineV1{
			{ID: "wks-001", Qty: 1},
			{ID: "crs-101", Qty: 2},
		})

		encoded, err := serde.Encode(v1)
		require.NoError(t, err)

		var v2 schema.CartSnapshotV1
		err = serde.Decode(encoded, &v2)
		require.NoError(t, err)

		assert.Equal(t, v1, v2)

		_, err = serde.Encode(schema.NewCartSnapshot([]schema.CartLineV1{
			{ID: "wks-001", Qty: schema.MaxLineQty + 1},
		}))
		assert.ErrorIs(t, err, schema.ErrInvalidSnapshot)
	})
}
