// Package policy decides whether a requester may mutate an owned resource.
package policy

import (
	"devconnect/internal/auth"
	"devconnect/internal/models"
)

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Check compares the recorded owner of a resource with the requester.
func Check(ownerID uint, requester auth.Identity) Decision {
	if ownerID != 0 && ownerID == requester.ID {
		return Allow
	}
	return Deny
}

// Authorize returns an Unauthorized error unless requester owns the resource.
// action names the attempted mutation, e.g. "delete post".
func Authorize(ownerID uint, requester auth.Identity, action string) error {
	if Check(ownerID, requester) == Allow {
		return nil
	}
	msg := "User not authorized"
	if action != "" {
		msg = "User not authorized to " + action
	}
	return models.NewUnauthorizedError(msg)
}
