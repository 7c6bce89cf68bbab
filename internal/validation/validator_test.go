// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type beacon struct {
	AppID     string `json:"appId" validate:"required,publicid"`
	EventName string `json:"eventName" validate:"required,max=16"`
	Currency  string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	DOMEvent  string `koanf:"dom_event" validate:"omitempty,oneof=click submit"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input beacon
	}{
		{"minimal", beacon{AppID: "px_1", EventName: "pageview"}},
		{"with currency", beacon{AppID: "shop-42", EventName: "purchase", Currency: "USD"}},
		{"with dom event", beacon{AppID: "A", EventName: "x", DOMEvent: "submit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     beacon
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "missing app id",
			input:     beacon{EventName: "pageview"},
			wantField: "appId",
			wantTag:   "required",
			wantMsg:   "appId is required",
		},
		{
			name:      "app id with spaces",
			input:     beacon{AppID: "px 1", EventName: "pageview"},
			wantField: "appId",
			wantTag:   "publicid",
			wantMsg:   "appId must contain only letters",
		},
		{
			name:      "event name too long",
			input:     beacon{AppID: "px_1", EventName: strings.Repeat("x", 17)},
			wantField: "eventName",
			wantTag:   "max",
			wantMsg:   "eventName must be at most 16 characters",
		},
		{
			name:      "bad currency",
			input:     beacon{AppID: "px_1", EventName: "purchase", Currency: "dollars"},
			wantField: "currency",
			wantTag:   "iso4217",
			wantMsg:   "ISO 4217 currency code",
		},
		{
			name:      "three letters but not a currency",
			input:     beacon{AppID: "px_1", EventName: "purchase", Currency: "ZZQ"},
			wantField: "currency",
			wantTag:   "iso4217",
			wantMsg:   "currency must be an ISO 4217 currency code",
		},
		{
			name:      "koanf tag used for field name",
			input:     beacon{AppID: "px_1", EventName: "x", DOMEvent: "hover"},
			wantField: "dom_event",
			wantTag:   "oneof",
			wantMsg:   "dom_event must be one of: click submit",
		},
		{
			name:      "negative quantity",
			input:     beacon{AppID: "px_1", EventName: "x", Quantity: -1},
			wantField: "quantity",
			wantTag:   "gte",
			wantMsg:   "quantity must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if !err.HasTag(tt.wantTag) {
				t.Errorf("HasTag(%q) = false", tt.wantTag)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want containing %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&beacon{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(err.Errors()), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message should join with '; ', got %q", err.Error())
	}
}

type nested struct {
	Apps []beacon `koanf:"apps" validate:"dive"`
}

func TestValidateStruct_Dive(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&nested{Apps: []beacon{{AppID: "ok", EventName: "x"}, {EventName: "y"}}})
	if err == nil {
		t.Fatal("expected error from second element")
	}
	if err.Errors()[0].Field() != "appId" {
		t.Errorf("Field() = %q, want appId", err.Errors()[0].Field())
	}
}
