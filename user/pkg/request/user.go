package request

import (
	"strings"

	"github.com/rs/zerolog"
)

type VerifyAdmin struct {
	Email string `json:"email"`
}

type SubmitContact struct {
	Name    string `validate:"required,max=100"         json:"name"`
	Email   string `validate:"required,storefront_email" json:"email"`
	Message string `validate:"required,contact_message"  json:"message"`
}

// MarshalZerologObject logs the contact request with the email local part masked.
func (s SubmitContact) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.Name).Str("email", MaskEmail(s.Email)).Int("messageLength", len([]rune(s.Message)))
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
