// Package publicid derives the shareable company identifier used on the
// unauthenticated login page, so internal UUIDs never leave the API.
package publicid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Length of a public id in hex characters.
const Length = 20

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// Generate returns hex(HMAC-SHA256(secret, id)) truncated to Length.
func (g *Generator) Generate(id string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))[:Length]
}

// Matches compares in constant time.
func (g *Generator) Matches(id, publicID string) bool {
	return hmac.Equal([]byte(g.Generate(id)), []byte(publicID))
}
