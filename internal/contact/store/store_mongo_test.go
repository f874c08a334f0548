package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
)

func TestMongoContactDecodesLegacyPhone(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		phone any
		want  string
	}{
		{"string", "5559876543", "5559876543"},
		{"double", 5559876543.0, "5559876543"},
		{"int64", int64(5559876543), "5559876543"},
		{"int32", int32(5551234), "5551234"},
		{"zero", 0.0, ""},
		{"null", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "firstName", Value: "Ada"},
				{Key: "lastName", Value: "Lovelace"},
				{Key: "phone", Value: tt.phone},
				{Key: "created_date", Value: created},
				{Key: "version", Value: 0},
			})
			require.NoError(t, err)

			var doc mongoContact
			require.NoError(t, bson.Unmarshal(raw, &doc))

			c := fromMongoContact(doc)
			assert.Equal(t, tt.want, c.Phone)
			assert.True(t, created.Equal(c.CreatedDate))
		})
	}
}

func TestMongoContactRejectsNonScalarPhone(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "phone", Value: bson.A{"555"}},
	})
	require.NoError(t, err)

	var doc mongoContact
	assert.Error(t, bson.Unmarshal(raw, &doc))
}

func TestMongoContactWritesPhoneAsString(t *testing.T) {
	c := models.NewContact(&models.CreateContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "5559876543",
	}, time.Now())
	c.ID = id.NewContactID()

	raw, err := bson.Marshal(toMongoContact(c))
	require.NoError(t, err)

	phone := bson.Raw(raw).Lookup("phone")
	assert.Equal(t, bson.TypeString, phone.Type)
	assert.Equal(t, "5559876543", phone.StringValue())
}

func TestMongoUpdatePipeline(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	t.Run("clamps modified_date and bumps version", func(t *testing.T) {
		pipeline := mongoUpdatePipeline(models.NewUpdate(models.Patch{}, now))

		require.Len(t, pipeline, 1)
		set := pipeline[0].Map()["$set"].(bson.D).Map()
		assert.Equal(t, bson.D{{Key: "$max", Value: bson.A{"$created_date", now}}}, set["modified_date"])
		assert.Contains(t, set, "version")
		assert.NotContains(t, set, "firstName")
	})

	t.Run("sets present fields as literals and unsets cleared ones", func(t *testing.T) {
		first := "Augusta"
		company := "$Engines"
		empty := ""
		pipeline := mongoUpdatePipeline(models.NewUpdate(models.Patch{
			FirstName: &first,
			Company:   &company,
			Email:     &empty,
		}, now))

		require.Len(t, pipeline, 2)
		set := pipeline[0].Map()["$set"].(bson.D).Map()
		assert.Equal(t, bson.D{{Key: "$literal", Value: "Augusta"}}, set["firstName"])
		assert.Equal(t, bson.D{{Key: "$literal", Value: "$Engines"}}, set["company"])
		assert.NotContains(t, set, "phone")
		assert.Equal(t, bson.A{"email"}, pipeline[1].Map()["$unset"])
	})
}
