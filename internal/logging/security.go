// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedStringLen caps untrusted strings attached to log events.
const maxLoggedStringLen = 200

// SanitizeString prepares a browser-supplied value for logging.
// Control characters are escaped so a crafted beacon cannot forge log
// lines, and the result is truncated.
func SanitizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return truncateString(b.String(), maxLoggedStringLen)
}

// SanitizeToken masks a credential, keeping the first and last 4 characters.
// Example: "EAAGm0PX4ZCpsBA..." -> "EAAG...sBA1"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeIdentifier masks session and visitor ids, which are stable per
// browser and should not be grep-able in aggregated logs.
func SanitizeIdentifier(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// SanitizeURL strips the query string and fragment, which routinely carry
// customer emails, discount codes and checkout tokens.
func SanitizeURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return SanitizeString(raw)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
