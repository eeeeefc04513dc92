package models

import (
	"strings"

	"github.com/google/uuid"
)

// Entity is anything persisted in a store table keyed by id.
type Entity interface {
	GetID() string
}

// OwnedEntity is an entity belonging to one user.
type OwnedEntity interface {
	Entity
	OwnerID() string
}

// ScopedEntity is an owned entity attached to one breeder.
type ScopedEntity interface {
	OwnedEntity
	BreederRef() string
}

// Scope identifies the tenant boundary of a query. An empty BreederID means
// every breeder of the user.
type Scope struct {
	UserID    string
	BreederID string
}

// Matches reports whether a row owned by userID/breederID is visible in the scope.
func (s Scope) Matches(userID, breederID string) bool {
	if userID != s.UserID {
		return false
	}
	return s.BreederID == "" || breederID == s.BreederID
}

// NewID returns a random identifier. A non-empty prefix yields short tagged ids
// such as OVN-3F9A1C.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	short := strings.ToUpper(strings.ReplaceAll(id, "-", "")[:6])
	return prefix + "-" + short
}
