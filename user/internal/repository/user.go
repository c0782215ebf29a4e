package repository

import (
	"context"

	"github.com/Alturino/framedarchive/user/pkg/model"
)

type UserStore interface {
	// FindAddress returns ErrAddressNotFound when the user has not saved an address.
	FindAddress(c context.Context, userID string) (model.Address, error)
	UpsertAddress(c context.Context, userID string, address model.Address) error
	InsertContactMessage(c context.Context, message model.ContactMessage) (model.ContactMessage, error)
}
