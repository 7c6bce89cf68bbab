// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import "testing"

func TestMapEventName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"pageview", "PageView"},
		{"page_view", "PageView"},
		{"PageView", "PageView"},
		{" Purchase ", "Purchase"},
		{"add_to_cart", "AddToCart"},
		{"checkout_started", "InitiateCheckout"},
		{"begin_checkout", "InitiateCheckout"},
		{"product_viewed", "ViewContent"},
		{"view_item", "ViewContent"},
		{"sign_up", "CompleteRegistration"},
		{"start_trial", "StartTrial"},
		{"newsletter_popup_closed", "newsletter_popup_closed"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MapEventName(tt.in); got != tt.want {
			t.Errorf("MapEventName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
