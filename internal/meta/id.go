package meta

import (
	"github.com/google/uuid"
)

// IDGenerator produces record identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (version 4) UUIDs.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new hyphenated UUIDv4.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// ID identifies a record by UUID.
type ID struct {
	ID uuid.UUID `json:"id"`
}

// NewID returns an ID with a fresh UUIDv4.
func NewID() ID {
	return ID{ID: uuid.New()}
}

// ParseID parses a hyphenated UUID.
func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID{ID: id}, nil
}

// MongoID identifies a MongoDB document. The identifier is a UUID string
// stored under _id.
type MongoID struct {
	ID string `json:"_id" bson:"_id"`
}

// NewMongoID returns a MongoID drawn from gen, or from UUIDGenerator when
// gen is nil.
func NewMongoID(gen IDGenerator) MongoID {
	if gen == nil {
		gen = UUIDGenerator{}
	}
	return MongoID{ID: gen.Generate()}
}
