package model

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	Street  string `validate:"required,max=300" json:"street"`
	City    string `validate:"required,max=100" json:"city"`
	State   string `validate:"required,max=100" json:"state"`
	ZipCode string `validate:"required,max=20"  json:"zipCode"`
	Country string `validate:"required,max=100" json:"country"`
}

type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
