// Package signature implements the message authentication schemes used by the
// three payment gateways. All schemes produce lowercase hex digests and are
// verified with a constant-time, case-sensitive comparison of the full digest.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// SignSortedQuery computes an HMAC-SHA512 over key=value pairs sorted
// lexicographically by percent-encoded key. Values are percent-encoded with
// space mapped to '+'. Empty values are skipped. The secret never appears in
// the canonical string.
func SignSortedQuery(params map[string]string, secret string) string {
	encoded := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		encoded = append(encoded, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	sort.Strings(encoded)

	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write([]byte(strings.Join(encoded, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySortedQuery(params map[string]string, provided, secret string) bool {
	return equalDigest(SignSortedQuery(params, secret), provided)
}

// SignFields computes an HMAC-SHA256 over a fixed pipe-delimited field
// sequence. The field order is part of the gateway contract and is the
// caller's responsibility.
func SignFields(secret string, fields ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyFields(provided, secret string, fields ...string) bool {
	return equalDigest(SignFields(secret, fields...), provided)
}

// SignBody computes an HMAC-SHA256 over the raw serialized body.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyBody(body []byte, provided, secret string) bool {
	return equalDigest(SignBody(body, secret), provided)
}

func equalDigest(expected, provided string) bool {
	if provided == "" || len(provided) != len(expected) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(provided))
}
