package lookup

import "errors"

var (
	// ErrInvalidGrid is returned by queries against a grid identifier with
	// no registered index.
	ErrInvalidGrid = errors.New("grid not registered in lookup index")

	// ErrDeletedEntity is returned when a membership computation is
	// requested for an entity already marked deleted.
	ErrDeletedEntity = errors.New("entity is deleted")
)
