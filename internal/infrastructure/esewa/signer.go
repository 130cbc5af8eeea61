// Package esewa talks to the eSewa ePay gateway: it builds signed redirect
// form payloads, decodes the gateway's callback deliveries, and queries the
// transaction status endpoint.
package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// SignedFieldOrder is the canonical field order for the redirect form
// signature. The order is part of the contract with the gateway and must
// never be reordered.
var SignedFieldOrder = []string{"total_amount", "transaction_uuid", "product_code"}

// Signer computes and verifies the gateway's HMAC-SHA256 signatures.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// BuildSignatureMessage canonicalizes the signed fields as
// "name=value,name=value,..." in exactly the given order. Both the initiator
// and the callback verifier go through here; the message format is never
// hand-built inline.
func BuildSignatureMessage(orderedNames []string, lookup func(name string) (string, bool)) (string, error) {
	pairs := make([]string, 0, len(orderedNames))
	for _, name := range orderedNames {
		value, ok := lookup(name)
		if !ok {
			return "", fmt.Errorf("signed field %q missing from payload", name)
		}
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ","), nil
}

// Sign returns the base64-encoded HMAC-SHA256 of the canonical message.
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignFields canonicalizes and signs in one step.
func (s *Signer) SignFields(orderedNames []string, lookup func(name string) (string, bool)) (string, error) {
	message, err := BuildSignatureMessage(orderedNames, lookup)
	if err != nil {
		return "", err
	}
	return s.Sign(message), nil
}

// Verify recomputes the signature over the fields named in signedFieldNames
// (a comma-separated list, the gateway's own ordering) with values taken from
// the callback payload itself, and compares against the supplied signature.
func (s *Signer) Verify(signedFieldNames, signature string, lookup func(name string) (string, bool)) bool {
	if signedFieldNames == "" || signature == "" {
		return false
	}
	names := strings.Split(signedFieldNames, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	message, err := BuildSignatureMessage(names, lookup)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(s.Sign(message)), []byte(signature))
}
