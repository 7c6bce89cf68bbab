// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pixelgate/internal/models"
)

// ErrRateLimited is returned when the outbound token bucket is empty.
var ErrRateLimited = errors.New("geo provider rate limit exceeded")

// Provider looks up location data for a public IP address.
type Provider interface {
	Lookup(ctx context.Context, ip string) (models.GeoInfo, error)
	Name() string
}

// ipAPIFields limits the response to what GeoInfo stores.
const ipAPIFields = "status,message,country,countryCode,region,regionName,city,zip,lat,lon,timezone,isp,query"

// IPAPIProvider queries the free ip-api.com JSON endpoint.
// The free tier allows 45 requests per minute per source IP; exceeding it
// gets the caller banned for a while, so the limit is enforced locally.
type IPAPIProvider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// ipAPIResponse is the JSON body returned by ip-api.com.
type ipAPIResponse struct {
	Status      string  `json:"status"`      // "success" or "fail"
	Message     string  `json:"message"`     // reason when status is "fail"
	Country     string  `json:"country"`     // country name
	CountryCode string  `json:"countryCode"` // ISO 3166-1 alpha-2
	Region      string  `json:"region"`      // region code
	RegionName  string  `json:"regionName"`  // region name
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"` // e.g. "America/Toronto"
	ISP         string  `json:"isp"`
	Query       string  `json:"query"` // the IP that was looked up
}

// IPAPIConfig configures an IPAPIProvider.
type IPAPIConfig struct {
	BaseURL            string
	RateLimitPerMinute int
	Client             *http.Client
}

// NewIPAPIProvider creates a provider. A nil Client gets a default client;
// per-call deadlines come from the caller's context.
func NewIPAPIProvider(cfg IPAPIConfig) *IPAPIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://ip-api.com/json"
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 45
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	return &IPAPIProvider{
		client:  cfg.Client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute),
		baseURL: cfg.BaseURL,
	}
}

// Name returns the provider name.
func (p *IPAPIProvider) Name() string {
	return "ip-api.com"
}

// Lookup queries ip-api.com for ip.
func (p *IPAPIProvider) Lookup(ctx context.Context, ip string) (models.GeoInfo, error) {
	if !p.limiter.Allow() {
		return models.GeoInfo{}, ErrRateLimited
	}

	result, err := p.query(ctx, ip)
	if err != nil {
		return models.GeoInfo{}, err
	}
	return convertIPAPIResponse(result), nil
}

func (p *IPAPIProvider) query(ctx context.Context, ip string) (*ipAPIResponse, error) {
	url := fmt.Sprintf("%s/%s?fields=%s", p.baseURL, ip, ipAPIFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("ip-api.com lookup failed: %s", result.Message)
	}

	return &result, nil
}

func convertIPAPIResponse(r *ipAPIResponse) models.GeoInfo {
	geo := models.GeoInfo{
		Country:     models.StringPtr(r.Country),
		CountryCode: models.StringPtr(r.CountryCode),
		Region:      models.StringPtr(r.RegionName),
		City:        models.StringPtr(r.City),
		Zip:         models.StringPtr(r.Zip),
		Timezone:    models.StringPtr(r.Timezone),
		ISP:         models.StringPtr(r.ISP),
	}
	// ip-api reports 0,0 when it has no coordinates.
	if r.Lat != 0 || r.Lon != 0 {
		lat, lon := r.Lat, r.Lon
		geo.Latitude = &lat
		geo.Longitude = &lon
	}
	return geo
}
