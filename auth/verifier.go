// Package auth validates the signed init payload a mini-app client attaches
// to every request, proving it originated from a real client session.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"adwheel/apperr"
)

// domainSeparator keys the first HMAC pass so the derived secret cannot
// collide with any other use of the shared token.
const domainSeparator = "WebAppData"

// Verifier checks init payload signatures against the shared bot token.
type Verifier struct {
	token string
}

// NewVerifier creates a verifier. An empty token is allowed: verification
// then fails closed for every payload.
func NewVerifier(botToken string) *Verifier {
	return &Verifier{token: botToken}
}

// Verify reconstructs the canonical form of initData and checks its
// signature. initData is a URL-query-encoded set of fields with a trailing
// hash field holding the hex HMAC digest.
func (v *Verifier) Verify(initData string) error {
	if v.token == "" {
		return apperr.New(apperr.Authenticity, "authenticity check unavailable")
	}
	if initData == "" {
		return apperr.New(apperr.Authenticity, "missing authenticity payload")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return apperr.Wrap(apperr.Authenticity, err, "malformed authenticity payload")
	}

	supplied := values.Get("hash")
	if supplied == "" {
		return apperr.New(apperr.Authenticity, "missing signature")
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	canonical := strings.Join(lines, "\n")

	mac := hmac.New(sha256.New, deriveSecret(v.token))
	mac.Write([]byte(canonical))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(supplied)) {
		return apperr.New(apperr.Authenticity, "invalid signature")
	}
	return nil
}

// deriveSecret computes the signing key: HMAC-SHA256 over the shared token,
// keyed by the domain separation constant.
func deriveSecret(token string) []byte {
	mac := hmac.New(sha256.New, []byte(domainSeparator))
	mac.Write([]byte(token))
	return mac.Sum(nil)
}
