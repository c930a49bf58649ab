package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// CanonicalClaimKey builds the stable dedup key for a claim: entity plus
// category plus a hash of the normalized payload. Semantically identical
// assertions from different sources map to the same key.
func CanonicalClaimKey(entity, category string, payload map[string]string) string {
	var b strings.Builder
	b.WriteString(normalizeToken(entity))
	b.WriteByte('|')
	b.WriteString(normalizeToken(category))
	b.WriteByte('|')

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(normalizeToken(k))
		b.WriteByte('=')
		b.WriteString(normalizeToken(payload[k]))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
