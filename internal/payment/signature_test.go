package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"order_id":"ORDER-1-1","transaction_status":"settlement"}`)
	sig := Sign(secret, body)

	assert.True(t, VerifySignature(secret, body, sig))
	assert.False(t, VerifySignature(secret, append(body, ' '), sig), "tampered body")
	assert.False(t, VerifySignature([]byte("other"), body, sig), "wrong secret")
	assert.False(t, VerifySignature(secret, body, "zz"), "not hex")
	assert.False(t, VerifySignature(nil, body, Sign(nil, body)), "empty secret")
	assert.False(t, VerifySignature(secret, body, ""))
}
