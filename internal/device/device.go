// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package device classifies the browser, operating system and form factor
// behind a beacon.
package device

import (
	"strings"

	"github.com/mileusna/useragent"

	"github.com/tomtom215/pixelgate/internal/logging"
	"github.com/tomtom215/pixelgate/internal/models"
)

// Screen width breakpoints in CSS pixels.
const (
	desktopMinWidth = 1024
	tabletMinWidth  = 768
)

// Classify parses userAgent and applies the screen width override.
//
// A reported screen width is a better form factor signal than the UA
// (iPadOS reports a desktop Safari UA, for one), so when it is present
// and positive it decides the device type. Classify never panics; a
// parser failure yields an empty DeviceInfo.
func Classify(userAgent string, screenWidth *int) (info models.DeviceInfo) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn().
				Interface("panic", r).
				Str("user_agent", logging.SanitizeString(userAgent)).
				Msg("User agent parser panicked")
			info = models.DeviceInfo{}
		}
	}()

	ua := useragent.Parse(userAgent)

	info.Browser = models.StringPtr(ua.Name)
	info.BrowserVersion = models.StringPtr(ua.Version)
	info.OS = models.StringPtr(ua.OS)
	info.OSVersion = models.StringPtr(ua.OSVersion)
	info.DeviceModel = models.StringPtr(ua.Device)
	info.DeviceVendor = models.StringPtr(vendorFor(ua.Device, ua.OS))

	if screenWidth != nil && *screenWidth > 0 {
		info.DeviceType = models.StringPtr(typeForWidth(*screenWidth))
	} else {
		info.DeviceType = models.StringPtr(typeForUA(&ua))
	}

	return info
}

func typeForWidth(w int) string {
	switch {
	case w >= desktopMinWidth:
		return models.DeviceDesktop
	case w >= tabletMinWidth:
		return models.DeviceTablet
	default:
		return models.DeviceMobile
	}
}

func typeForUA(ua *useragent.UserAgent) string {
	switch {
	case ua.Tablet:
		return models.DeviceTablet
	case ua.Mobile:
		return models.DeviceMobile
	case ua.Desktop:
		return models.DeviceDesktop
	default:
		return ""
	}
}

// modelPrefixes maps device model prefixes to vendors. Checked in order.
var modelPrefixes = []struct {
	prefix string
	vendor string
}{
	{"iphone", "Apple"},
	{"ipad", "Apple"},
	{"ipod", "Apple"},
	{"sm-", "Samsung"},
	{"gt-", "Samsung"},
	{"galaxy", "Samsung"},
	{"pixel", "Google"},
	{"nexus", "Google"},
	{"redmi", "Xiaomi"},
	{"mi ", "Xiaomi"},
	{"poco", "Xiaomi"},
	{"moto", "Motorola"},
	{"xt", "Motorola"},
	{"oneplus", "OnePlus"},
	{"cph", "OPPO"},
	{"vivo", "vivo"},
	{"huawei", "Huawei"},
	{"lg-", "LG"},
	{"lm-", "LG"},
	{"nokia", "Nokia"},
	{"kfo", "Amazon"},
	{"kft", "Amazon"},
}

// vendorFor derives the manufacturer from the model, falling back to the
// OS family for platforms with a single vendor.
func vendorFor(model, os string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, p := range modelPrefixes {
		if strings.HasPrefix(m, p.prefix) {
			return p.vendor
		}
	}

	switch os {
	case useragent.IOS, useragent.MacOS:
		return "Apple"
	case useragent.ChromeOS:
		return "Google"
	}
	return ""
}
