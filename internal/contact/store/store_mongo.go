package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

// mongoContact is the stored document. Field names match the collection
// layout used by earlier versions of the service, which stored phone as a
// Number; see mongoPhone.
type mongoContact struct {
	ID           primitive.ObjectID `bson:"_id"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Email        string             `bson:"email,omitempty"`
	Company      string             `bson:"company,omitempty"`
	Phone        mongoPhone         `bson:"phone,omitempty"`
	CreatedDate  time.Time          `bson:"created_date"`
	ModifiedDate *time.Time         `bson:"modified_date,omitempty"`
	Version      int                `bson:"version"`
}

// mongoPhone is written as a string and read from a string or any BSON
// number.
type mongoPhone string

func (p *mongoPhone) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeString:
		*p = mongoPhone(rv.StringValue())
	case bson.TypeDouble:
		*p = mongoPhone(models.FormatPhoneNumber(rv.Double()))
	case bson.TypeInt32:
		*p = mongoPhone(models.FormatPhoneNumber(float64(rv.Int32())))
	case bson.TypeInt64:
		*p = mongoPhone(models.FormatPhoneNumber(float64(rv.Int64())))
	case bson.TypeNull, bson.TypeUndefined:
		*p = ""
	default:
		return fmt.Errorf("cannot decode %s into phone", t)
	}
	return nil
}

// MongoStore persists contacts in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongo constructs a store over the given collection.
func NewMongo(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the secondary indexes the store relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create created_date index: %w", err)
	}
	return nil
}

func (s *MongoStore) IsValidID(raw string) bool {
	return ValidID(raw)
}

func (s *MongoStore) Insert(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	doc := toMongoContact(c)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return fromMongoContact(doc), nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]*models.Contact, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	var docs []mongoContact
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}

	out := make([]*models.Contact, 0, len(docs))
	for i := range docs {
		out = append(out, fromMongoContact(docs[i]))
	}
	return out, nil
}

func (s *MongoStore) FindByID(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	var doc mongoContact
	err := s.coll.FindOne(ctx, bson.M{"_id": contactID.ObjectID()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return fromMongoContact(doc), nil
}

// UpdateByID applies the update as a single aggregation-pipeline update, so
// the version bump is atomic with the field changes and modified_date can be
// clamped against the stored created_date.
func (s *MongoStore) UpdateByID(ctx context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error) {
	var doc mongoContact
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": contactID.ObjectID()},
		mongoUpdatePipeline(u),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return fromMongoContact(doc), nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, contactID id.ContactID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": contactID.ObjectID()})
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) Health(ctx context.Context) error {
	return unavailable(s.coll.Database().Client().Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.coll.Database().Client().Disconnect(ctx)
}

func mongoUpdatePipeline(u models.Update) mongo.Pipeline {
	set := bson.D{
		{Key: "modified_date", Value: bson.D{{Key: "$max", Value: bson.A{"$created_date", u.ModifiedDate}}}},
		{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$version", 0}}},
			u.VersionIncrement,
		}}}},
	}
	if u.FirstName != nil {
		set = append(set, bson.E{Key: "firstName", Value: literal(*u.FirstName)})
	}
	if u.LastName != nil {
		set = append(set, bson.E{Key: "lastName", Value: literal(*u.LastName)})
	}

	var unset bson.A
	optional := []struct {
		field string
		value *string
	}{
		{"company", u.Company},
		{"phone", u.Phone},
		{"email", u.Email},
	}
	for _, o := range optional {
		switch {
		case o.value == nil:
		case *o.value == "":
			unset = append(unset, o.field)
		default:
			set = append(set, bson.E{Key: o.field, Value: literal(*o.value)})
		}
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	if len(unset) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: unset}})
	}
	return pipeline
}

// literal stops a stored value that starts with "$" from being read as a
// field path inside the pipeline.
func literal(v string) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func toMongoContact(c *models.Contact) mongoContact {
	return mongoContact{
		ID:           c.ID.ObjectID(),
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Company:      c.Company,
		Phone:        mongoPhone(c.Phone),
		CreatedDate:  c.CreatedDate,
		ModifiedDate: c.ModifiedDate,
		Version:      c.Version,
	}
}

func fromMongoContact(doc mongoContact) *models.Contact {
	c := &models.Contact{
		ID:          id.ContactID(doc.ID),
		FirstName:   doc.FirstName,
		LastName:    doc.LastName,
		Email:       doc.Email,
		Company:     doc.Company,
		Phone:       string(doc.Phone),
		CreatedDate: models.Timestamp(doc.CreatedDate),
		Version:     doc.Version,
	}
	if doc.ModifiedDate != nil {
		modified := models.Timestamp(*doc.ModifiedDate)
		c.ModifiedDate = &modified
	}
	return c
}
