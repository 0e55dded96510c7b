package domain

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const recordIdSeparator = "_"

type RecordId struct {
	Tag  string
	UUID uuid.UUID
}

func NewRecordId(tag string) RecordId {
	return RecordId{tag, uuid.New()}
}

// NewRecordIdFromHash derives the tag from the first bytes of the lock hash.
func NewRecordIdFromHash(hash []byte) RecordId {
	tag := hex.EncodeToString(hash)
	if len(tag) > hashTagHexCharacters {
		tag = tag[:hashTagHexCharacters]
	}
	if tag == "" {
		tag = "htlc"
	}
	return NewRecordId(tag)
}

// ValidateRecordTag makes sure tag can prefix a record id.
func ValidateRecordTag(tag string) error {
	if tag == "" {
		return NewError(ErrorKindInvalidArgument, "missing record tag")
	}
	if strings.Contains(tag, recordIdSeparator) {
		return NewError(
			ErrorKindInvalidArgument, "invalid record tag %q, must not contain %q",
			tag, recordIdSeparator,
		)
	}
	return nil
}

func ParseRecordId(id string) (RecordId, error) {
	parts := strings.Split(id, recordIdSeparator)
	if len(parts) != 2 {
		return RecordId{}, NewError(
			ErrorKindInvalidIdentifier, "invalid record id %q, expected <tag>_<uuid>", id,
		)
	}
	if len(parts[0]) <= 0 {
		return RecordId{}, NewError(ErrorKindInvalidIdentifier, "invalid record id %q, missing tag", id)
	}
	u, err := uuid.Parse(parts[1])
	if err != nil {
		return RecordId{}, WrapError(
			ErrorKindInvalidIdentifier, err, "invalid record id %q, malformed uuid", id,
		)
	}
	if u.String() != strings.ToLower(parts[1]) {
		return RecordId{}, NewError(
			ErrorKindInvalidIdentifier, "invalid record id %q, uuid must be in canonical form", id,
		)
	}
	return RecordId{parts[0], u}, nil
}

func (r RecordId) String() string {
	return r.Tag + recordIdSeparator + r.UUID.String()
}
