package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Signer produces the keyed signature the gateway validates. The gateway
// mandates the exact canonical form: keys sorted in byte order, joined as
// key=value pairs with '&', values concatenated raw without URL encoding.
type Signer struct {
	secretKey string
}

// NewSigner creates a signer for the given pre-shared secret.
func NewSigner(secretKey string) *Signer {
	return &Signer{secretKey: strings.TrimSpace(secretKey)}
}

// CanonicalQuery builds the canonical string over params. Absent entries are
// simply never added to the map; empty values are kept, matching the gateway's
// treatment of empty-but-present fields such as extraData.
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// Sign computes the lowercase hex SHA-256 HMAC over the canonical form of
// params. For a fixed parameter set the result is deterministic.
func (s *Signer) Sign(params map[string]string) string {
	mac := hmac.New(sha256.New, []byte(s.secretKey))
	mac.Write([]byte(CanonicalQuery(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the canonical form of params,
// comparing in constant time.
func (s *Signer) Verify(params map[string]string, signature string) bool {
	return hmac.Equal([]byte(s.Sign(params)), []byte(signature))
}
