package service

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/google/uuid"
)

// PaymentToken derives the one-click confirmation token for a reminder: the
// first 8 characters of the base64 encoding of its id.
//
// The token is guessable from the id and only deters accidental clicks. It
// is not an access control.
func PaymentToken(reminderID uuid.UUID) string {
	return base64.StdEncoding.EncodeToString([]byte(reminderID.String()))[:8]
}

// VerifyPaymentToken reports whether token matches the reminder.
func VerifyPaymentToken(reminderID uuid.UUID, token string) bool {
	return subtle.ConstantTimeCompare([]byte(PaymentToken(reminderID)), []byte(token)) == 1
}
