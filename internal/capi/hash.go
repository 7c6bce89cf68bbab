// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashValue returns the hex SHA-256 of the trimmed, lower-cased value, or
// "" when nothing is left to hash.
func HashValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

// HashPhone keeps digits only before hashing; Meta matches on E.164
// digits without the leading plus.
func HashPhone(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return HashValue(b.String())
}

// HashCompact drops inner whitespace before hashing (city, zip).
func HashCompact(v string) string {
	return HashValue(strings.Join(strings.Fields(v), ""))
}
