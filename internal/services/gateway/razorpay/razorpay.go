package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrNotConfigured = errors.New("razorpay: key secret not configured")

// Verifier checks the authenticity of Razorpay payment callbacks. Razorpay
// signs checkout results with HMAC-SHA256 over "<order_id>|<payment_id>"
// using the API key secret.
type Verifier struct {
	keySecret string
}

func NewVerifier(keySecret string) *Verifier {
	return &Verifier{keySecret: keySecret}
}

// Configured reports whether a key secret is present. Callers treat a
// missing secret as a server configuration error, not a bad request.
func (v *Verifier) Configured() bool {
	return v.keySecret != ""
}

// VerifySignature reports whether signature matches the expected HMAC for
// the given order and payment ids. Comparison is constant time.
func (v *Verifier) VerifySignature(orderID, paymentID, signature string) (bool, error) {
	if !v.Configured() {
		return false, ErrNotConfigured
	}

	expected := Hmac256([]byte(orderID+"|"+paymentID), []byte(v.keySecret))
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Hmac256 is a function to generate HMAC256 hash.
func Hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}
