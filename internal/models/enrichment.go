// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package models

// Device types reported by the classifier.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// DeviceInfo is the classifier output. Any field may be nil.
type DeviceInfo struct {
	Browser        *string `json:"browser,omitempty"`
	BrowserVersion *string `json:"browser_version,omitempty"`
	OS             *string `json:"os,omitempty"`
	OSVersion      *string `json:"os_version,omitempty"`
	DeviceType     *string `json:"device_type,omitempty"`
	DeviceModel    *string `json:"device_model,omitempty"`
	DeviceVendor   *string `json:"device_vendor,omitempty"`
}

// GeoInfo is the resolver output. The zero value means "unknown".
type GeoInfo struct {
	Country     *string  `json:"country,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
	Region      *string  `json:"region,omitempty"`
	City        *string  `json:"city,omitempty"`
	Zip         *string  `json:"zip,omitempty"`
	Latitude    *float64 `json:"lat,omitempty"`
	Longitude   *float64 `json:"lon,omitempty"`
	Timezone    *string  `json:"timezone,omitempty"`
	ISP         *string  `json:"isp,omitempty"`
}

// IsEmpty reports whether no field was resolved.
func (g *GeoInfo) IsEmpty() bool {
	return g.Country == nil && g.CountryCode == nil && g.Region == nil &&
		g.City == nil && g.Zip == nil && g.Latitude == nil && g.Longitude == nil &&
		g.Timezone == nil && g.ISP == nil
}

// StringPtr returns nil for the empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
