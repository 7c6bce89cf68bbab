// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import (
	"github.com/tomtom215/pixelgate/internal/models"
)

// ActionSourceWebsite marks events that happened on a storefront page.
const ActionSourceWebsite = "website"

// Request is the body POSTed to /{pixel}/events.
type Request struct {
	Data          []ServerEvent `json:"data"`
	TestEventCode string        `json:"test_event_code,omitempty"`
}

// ServerEvent is one entry of Request.Data.
type ServerEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	EventID        string         `json:"event_id"`
	EventSourceURL string         `json:"event_source_url,omitempty"`
	ActionSource   string         `json:"action_source"`
	UserData       UserData       `json:"user_data"`
	CustomData     map[string]any `json:"custom_data,omitempty"`
}

// UserData carries hashed matching keys. Only the IP and user agent are
// sent in the clear, as Meta requires.
type UserData struct {
	Email           string `json:"em,omitempty"`
	Phone           string `json:"ph,omitempty"`
	FirstName       string `json:"fn,omitempty"`
	LastName        string `json:"ln,omitempty"`
	City            string `json:"ct,omitempty"`
	State           string `json:"st,omitempty"`
	Zip             string `json:"zp,omitempty"`
	Country         string `json:"country,omitempty"`
	ExternalID      string `json:"external_id,omitempty"`
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

// reservedCustomKeys are filled from typed event fields and never taken
// from the merchant's free-form custom data.
var reservedCustomKeys = map[string]struct{}{
	"value":        {},
	"currency":     {},
	"content_ids":  {},
	"content_name": {},
	"num_items":    {},
}

// BuildServerEvent converts a stored event plus the request's PII into a
// Conversions API event. PII is hashed here and goes no further.
func BuildServerEvent(ev *models.Event, user models.UserData) ServerEvent {
	se := ServerEvent{
		EventName:      MapEventName(ev.EventName),
		EventTime:      ev.CreatedAt.Unix(),
		EventID:        ev.ID.String(),
		EventSourceURL: models.Deref(ev.URL),
		ActionSource:   ActionSourceWebsite,
		UserData:       buildUserData(ev, user),
		CustomData:     buildCustomData(ev),
	}
	return se
}

func buildUserData(ev *models.Event, user models.UserData) UserData {
	externalID := models.Deref(ev.Fingerprint)
	if externalID == "" {
		externalID = models.Deref(ev.VisitorID)
	}

	ud := UserData{
		City:            HashCompact(models.Deref(ev.City)),
		State:           HashValue(models.Deref(ev.Region)),
		Zip:             HashCompact(models.Deref(ev.Zip)),
		Country:         HashValue(models.Deref(ev.CountryCode)),
		ExternalID:      HashValue(externalID),
		ClientIPAddress: models.Deref(ev.IPAddress),
		ClientUserAgent: models.Deref(ev.UserAgent),
	}
	if !user.IsEmpty() {
		ud.Email = HashValue(user.Email)
		ud.Phone = HashPhone(user.Phone)
		ud.FirstName = HashValue(user.FirstName)
		ud.LastName = HashValue(user.LastName)
	}
	return ud
}

func buildCustomData(ev *models.Event) map[string]any {
	cd := make(map[string]any)

	for k, v := range ev.CustomData {
		if _, reserved := reservedCustomKeys[k]; reserved {
			continue
		}
		switch v.(type) {
		case string, bool, float64, float32, int, int32, int64:
			cd[k] = v
		}
	}

	if ev.Value != nil {
		cd["value"] = *ev.Value
	}
	if ev.Currency != nil {
		cd["currency"] = *ev.Currency
	}
	if ev.ProductID != nil {
		cd["content_ids"] = []string{*ev.ProductID}
	}
	if ev.ProductName != nil {
		cd["content_name"] = *ev.ProductName
	}
	if ev.Quantity != nil {
		cd["num_items"] = *ev.Quantity
	}

	if len(cd) == 0 {
		return nil
	}
	return cd
}
