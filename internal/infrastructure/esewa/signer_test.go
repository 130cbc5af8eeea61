package esewa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsLookup(fields map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := fields[name]
		return v, ok
	}
}

func TestBuildSignatureMessage_Order(t *testing.T) {
	fields := map[string]string{
		"total_amount":     "110.00",
		"transaction_uuid": "txn-abc",
		"product_code":     "EPAYTEST",
	}

	msg, err := BuildSignatureMessage(SignedFieldOrder, fieldsLookup(fields))
	require.NoError(t, err)
	assert.Equal(t, "total_amount=110.00,transaction_uuid=txn-abc,product_code=EPAYTEST", msg)
}

func TestBuildSignatureMessage_MissingField(t *testing.T) {
	fields := map[string]string{
		"total_amount": "110.00",
		"product_code": "EPAYTEST",
	}

	_, err := BuildSignatureMessage(SignedFieldOrder, fieldsLookup(fields))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction_uuid")
}

func TestSigner_SignVerifyRoundtrip(t *testing.T) {
	signer := NewSigner("8gBm/:&EnhH.1/q")
	fields := map[string]string{
		"total_amount":     "100.00",
		"transaction_uuid": "11-201-13",
		"product_code":     "EPAYTEST",
	}

	sig, err := signer.SignFields(SignedFieldOrder, fieldsLookup(fields))
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	assert.True(t, signer.Verify("total_amount,transaction_uuid,product_code", sig, fieldsLookup(fields)))
}

func TestSigner_KnownVector(t *testing.T) {
	// Reference vector from the eSewa ePay v2 integration docs.
	signer := NewSigner("8gBm/:&EnhH.1/q")
	sig := signer.Sign("total_amount=100,transaction_uuid=11-201-13,product_code=EPAYTEST")
	assert.Equal(t, "5DZywcrTKD0gia/rsSMcrRHmJl+4Tbol6S+lWgdJ94E=", sig)
}

func TestSigner_Verify_RejectsMutation(t *testing.T) {
	signer := NewSigner("secret")
	fields := map[string]string{
		"total_amount":     "250.00",
		"transaction_uuid": "txn-1",
		"product_code":     "EPAYTEST",
	}

	sig, err := signer.SignFields(SignedFieldOrder, fieldsLookup(fields))
	require.NoError(t, err)

	// Any single-field change must invalidate the signature.
	tampered := map[string]string{
		"total_amount":     "250.01",
		"transaction_uuid": "txn-1",
		"product_code":     "EPAYTEST",
	}
	assert.False(t, signer.Verify("total_amount,transaction_uuid,product_code", sig, fieldsLookup(tampered)))

	// As must a single-byte change to the signature itself.
	mutated := []byte(sig)
	if mutated[0] == 'A' {
		mutated[0] = 'B'
	} else {
		mutated[0] = 'A'
	}
	assert.False(t, signer.Verify("total_amount,transaction_uuid,product_code", string(mutated), fieldsLookup(fields)))
}

func TestSigner_Verify_EmptyInputs(t *testing.T) {
	signer := NewSigner("secret")
	lookup := fieldsLookup(map[string]string{"total_amount": "1.00"})

	assert.False(t, signer.Verify("", "sig", lookup))
	assert.False(t, signer.Verify("total_amount", "", lookup))
	assert.False(t, signer.Verify("total_amount,missing_field", "sig", lookup))
}

func TestSigner_Verify_UsesGatewayFieldOrder(t *testing.T) {
	// Verification follows the signed_field_names list as delivered, not the
	// initiation-side order.
	signer := NewSigner("secret")
	fields := map[string]string{
		"transaction_code": "000AWEO",
		"status":           "COMPLETE",
		"total_amount":     "100.00",
	}

	sig, err := signer.SignFields([]string{"transaction_code", "status", "total_amount"}, fieldsLookup(fields))
	require.NoError(t, err)
	assert.True(t, signer.Verify("transaction_code,status,total_amount", sig, fieldsLookup(fields)))
	assert.False(t, signer.Verify("total_amount,status,transaction_code", sig, fieldsLookup(fields)))
}
