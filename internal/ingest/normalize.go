// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pixelgate/internal/models"
	"github.com/tomtom215/pixelgate/internal/validation"
)

const (
	maxURLLen    = 2048
	maxStringLen = 512
)

// Accepted spellings per canonical field, first match wins.
var (
	appIDKeys     = []string{"appId", "app_id"}
	eventNameKeys = []string{"eventName", "event_name", "event"}
)

var stringFields = []struct {
	keys   []string
	maxLen int
	set    func(*models.CanonicalEvent, *string)
}{
	{[]string{"url", "pageUrl", "page_url"}, maxURLLen, func(e *models.CanonicalEvent, v *string) { e.URL = v }},
	{[]string{"referrer", "referer"}, maxURLLen, func(e *models.CanonicalEvent, v *string) { e.Referrer = v }},
	{[]string{"pageTitle", "page_title", "title"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.PageTitle = v }},
	{[]string{"sessionId", "session_id"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.SessionID = v }},
	{[]string{"visitorId", "visitor_id"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.VisitorID = v }},
	{[]string{"fingerprint"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.Fingerprint = v }},
	{[]string{"userAgent", "user_agent"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UserAgent = v }},
	{[]string{"language", "lang"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.Language = v }},
	{[]string{"utmSource", "utm_source"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UTMSource = v }},
	{[]string{"utmMedium", "utm_medium"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UTMMedium = v }},
	{[]string{"utmCampaign", "utm_campaign"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UTMCampaign = v }},
	{[]string{"utmTerm", "utm_term"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UTMTerm = v }},
	{[]string{"utmContent", "utm_content"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.UTMContent = v }},
	{[]string{"productId", "product_id"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.ProductID = v }},
	{[]string{"productName", "product_name"}, maxStringLen, func(e *models.CanonicalEvent, v *string) { e.ProductName = v }},
}

// Normalize turns a decoded payload into a canonical event. It fails with
// ErrMissingField when appId or eventName is absent or blank, and with
// ErrInvalidPayload when a present field is unusable. Optional fields of
// the wrong type are dropped rather than rejected.
func Normalize(p Payload) (*models.CanonicalEvent, error) {
	f := p.Fields
	if f == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	ev := &models.CanonicalEvent{
		AppID:     firstString(f, appIDKeys, maxStringLen),
		EventName: firstString(f, eventNameKeys, maxStringLen),
	}
	if ev.AppID == "" {
		return nil, fmt.Errorf("%w: appId", ErrMissingField)
	}
	if ev.EventName == "" {
		return nil, fmt.Errorf("%w: eventName", ErrMissingField)
	}

	for _, sf := range stringFields {
		sf.set(ev, models.StringPtr(firstString(f, sf.keys, sf.maxLen)))
	}

	if v, ok := firstFloat(f, "value"); ok {
		ev.Value = &v
	}
	if q, ok := firstInt(f, "quantity", "qty"); ok && q >= 0 {
		ev.Quantity = &q
	}
	if w, ok := firstInt(f, "screenWidth", "screen_width"); ok {
		ev.ScreenWidth = &w
	}
	if h, ok := firstInt(f, "screenHeight", "screen_height"); ok {
		ev.ScreenHeight = &h
	}

	// Unknown or malformed codes are dropped rather than rejected.
	if c := strings.ToUpper(firstString(f, []string{"currency"}, maxStringLen)); c != "" &&
		validation.GetValidator().Var(c, "iso4217") == nil {
		ev.Currency = &c
	}

	if cd, ok := firstObject(f, "customData", "custom_data"); ok && len(cd) > 0 {
		ev.CustomData = plainCustomData(cd)
	}
	if ud, ok := firstObject(f, "userData", "user_data"); ok {
		ev.UserData = userDataFrom(ud)
	}

	if verr := validation.ValidateStruct(ev); verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, verr.Error())
	}
	return ev, nil
}

func hasNonBlank(f map[string]any, keys []string) bool {
	return firstString(f, keys, maxStringLen) != ""
}

// firstString returns the first key holding a non-blank string (or number),
// trimmed and capped at maxLen bytes on a rune boundary.
func firstString(f map[string]any, keys []string, maxLen int) string {
	for _, k := range keys {
		v, ok := f[k]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(stringValue(v)); s != "" {
			return truncate(s, maxLen)
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	s = s[:maxLen]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// firstFloat parses a JSON number or numeric string. Anything else,
// including NaN and infinities, is treated as absent.
func firstFloat(f map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := f[k]
		if !ok || v == nil {
			continue
		}
		var (
			n   float64
			err error
		)
		switch t := v.(type) {
		case json.Number:
			n, err = t.Float64()
		case float64:
			n = t
		case string:
			n, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
		default:
			continue
		}
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		return n, true
	}
	return 0, false
}

// firstInt is firstFloat truncated toward zero.
func firstInt(f map[string]any, keys ...string) (int, bool) {
	n, ok := firstFloat(f, keys...)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(n)), true
}

func firstObject(f map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if m, ok := f[k].(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

// plainCustomData converts json.Number leaves to float64 so the map
// re-encodes and compares like ordinary decoded JSON.
func plainCustomData(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return plainCustomData(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plainValue(t[i])
		}
		return out
	default:
		return v
	}
}

// userDataFrom reads PII for forwarding. A single "name" is split on the
// first space when first/last names are not given separately.
func userDataFrom(m map[string]any) models.UserData {
	u := models.UserData{
		Email:     firstString(m, []string{"email", "em"}, maxStringLen),
		Phone:     firstString(m, []string{"phone", "ph"}, maxStringLen),
		FirstName: firstString(m, []string{"firstName", "first_name", "fn"}, maxStringLen),
		LastName:  firstString(m, []string{"lastName", "last_name", "ln"}, maxStringLen),
	}
	if u.FirstName == "" && u.LastName == "" {
		if name := firstString(m, []string{"name"}, maxStringLen); name != "" {
			first, last, _ := strings.Cut(name, " ")
			u.FirstName = first
			u.LastName = strings.TrimSpace(last)
		}
	}
	return u
}
