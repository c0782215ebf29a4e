package auth

import (
	"context"
	"fmt"
)

// Owner identifies whose cart a request acts on: a signed-in user or a guest session.
type Owner struct {
	UserID       string
	Email        string
	GuestSession string
}

func (o Owner) IsGuest() bool {
	return o.UserID == ""
}

func (o Owner) Valid() bool {
	return o.UserID != "" || o.GuestSession != ""
}

// Key is unique per owner and stable for the lifetime of the session or account.
func (o Owner) Key() string {
	if o.IsGuest() {
		return fmt.Sprintf("guests:%s", o.GuestSession)
	}
	return fmt.Sprintf("users:%s", o.UserID)
}

type ownerKey struct{}

func AttachOwner(c context.Context, owner Owner) context.Context {
	return context.WithValue(c, ownerKey{}, owner)
}

func OwnerFromContext(c context.Context) Owner {
	owner, _ := c.Value(ownerKey{}).(Owner)
	return owner
}
