// Package payments integrates the Razorpay payment gateway: order creation,
// payment lookup, and completion-signature verification.
//
// This file implements the signature verifier. After a client completes a
// checkout, Razorpay hands it a signature computed as
//
//	hex(HMAC-SHA256(orderID + "|" + paymentID, key_secret))
//
// Recomputing that digest server-side with the shared secret proves the
// completion claim originated from the gateway. The delimiter, field order,
// and lowercase hex encoding are wire-compatibility requirements; changing
// any of them breaks verification against real gateway signatures.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature reports whether signature authenticates the pair
// (orderID, paymentID) under secret.
//
// The comparison is constant-time (hmac.Equal), so a forged signature cannot
// be refined byte-by-byte through timing measurements. Only an exact match of
// the lowercase hex digest verifies; any mutation, truncation, or case change
// is rejected.
//
// The function is pure: no I/O, no logging. Callers must never log secret.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
