package persistence

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

func uuidPtrValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func timePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullUUIDPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func nullTimePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
