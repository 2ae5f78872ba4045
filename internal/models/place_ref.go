package models

import "github.com/google/uuid"

// PlaceRef distinguishes places stored in the places table from entries of
// the external static catalog. Reviews address both through a single string
// column; consumers parse that string through here instead of guessing.
// Achievement rules that depend on place type only apply to internal refs,
// since external catalog entries have no row to join against.
type PlaceRef struct {
	id  uuid.UUID
	key string
}

// ParsePlaceRef classifies a review's place id. Anything that parses as a
// UUID is an internal place; everything else is an external catalog key.
func ParsePlaceRef(s string) PlaceRef {
	if id, err := uuid.Parse(s); err == nil {
		return PlaceRef{id: id}
	}
	return PlaceRef{key: s}
}

func InternalPlaceRef(id uuid.UUID) PlaceRef {
	return PlaceRef{id: id}
}

func ExternalPlaceRef(key string) PlaceRef {
	return PlaceRef{key: key}
}

func (r PlaceRef) IsInternal() bool {
	return r.id != uuid.Nil
}

// InternalID returns the place row id and whether the ref is internal.
func (r PlaceRef) InternalID() (uuid.UUID, bool) {
	return r.id, r.id != uuid.Nil
}

func (r PlaceRef) String() string {
	if r.id != uuid.Nil {
		return r.id.String()
	}
	return r.key
}
