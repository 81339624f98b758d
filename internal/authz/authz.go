// Package authz implements the ownership gate restricting single-resource
// operations to the user that owns the target app.
package authz

import (
	"errors"
	"strconv"
	"strings"

	"github.com/appdeck/appdeck/internal/models"
)

// Operation names a gated single-resource action.
type Operation string

// Gated operations on apps and subscriptions.
const (
	// OpRetrieve reads a single resource.
	OpRetrieve Operation = "retrieve"
	// OpUpdate replaces all mutable fields.
	OpUpdate Operation = "update"
	// OpPartialUpdate merges supplied fields.
	OpPartialUpdate Operation = "partial-update"
	// OpDestroy deletes the resource.
	OpDestroy Operation = "destroy"
)

// ErrMissingPrimaryKey indicates a single-resource operation was invoked
// without a target identifier. Checked before any database lookup.
var ErrMissingPrimaryKey = errors.New("authz: missing primary key")

// ErrOwnershipDenied indicates the acting user does not own the target app.
var ErrOwnershipDenied = errors.New("authz: ownership denied")

// RequireID parses the primary key from a request path parameter. A blank
// parameter is the distinct MissingPrimaryKey failure; a malformed one is
// treated as an identifier that cannot exist.
func RequireID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissingPrimaryKey
	}
	id, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil {
		return 0, errParse
	}
	return id, nil
}

// AuthorizeApp permits the operation iff the acting user owns the app.
// The check is a pure predicate; denial happens before any mutating write,
// so a denied request leaves no partial side effects.
func AuthorizeApp(actorID uint64, app *models.App, op Operation) error {
	if app == nil {
		return ErrOwnershipDenied
	}
	if actorID == 0 || actorID != app.UserID {
		return ErrOwnershipDenied
	}
	return nil
}

// AuthorizeSubscription permits the operation iff the acting user owns the
// app the subscription is linked to. The App association must be loaded.
func AuthorizeSubscription(actorID uint64, sub *models.Subscription, op Operation) error {
	if sub == nil {
		return ErrOwnershipDenied
	}
	return AuthorizeApp(actorID, &sub.App, op)
}
