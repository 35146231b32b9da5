package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	secret := "top-secret"

	assert.True(t, VerifySignature(secret, body, signBody(secret, body)))
	assert.False(t, VerifySignature(secret, body, signBody("other-secret", body)))
	assert.False(t, VerifySignature(secret, []byte("tampered"), signBody(secret, body)))
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	body := []byte("payload")

	assert.False(t, VerifySignature("secret", body, ""))
	assert.False(t, VerifySignature("secret", body, "sha1=abcdef"))
	assert.False(t, VerifySignature("secret", body, "sha256=not-hex"))
}

func TestVerifySignatureDisabledWithoutSecret(t *testing.T) {
	assert.True(t, VerifySignature("", []byte("anything"), ""))
}
