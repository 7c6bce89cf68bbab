// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package capi

import "strings"

// standardEvents maps storefront event names to Meta standard events.
var standardEvents = map[string]string{
	"pageview":              "PageView",
	"page_view":             "PageView",
	"add_to_cart":           "AddToCart",
	"purchase":              "Purchase",
	"initiate_checkout":     "InitiateCheckout",
	"checkout_started":      "InitiateCheckout",
	"begin_checkout":        "InitiateCheckout",
	"view_content":          "ViewContent",
	"product_viewed":        "ViewContent",
	"view_item":             "ViewContent",
	"search":                "Search",
	"add_payment_info":      "AddPaymentInfo",
	"add_to_wishlist":       "AddToWishlist",
	"lead":                  "Lead",
	"sign_up":               "CompleteRegistration",
	"complete_registration": "CompleteRegistration",
	"contact":               "Contact",
	"subscribe":             "Subscribe",
	"start_trial":           "StartTrial",
}

// MapEventName returns the Meta standard event for name. Names without a
// mapping are sent as custom events under their original spelling.
func MapEventName(name string) string {
	if mapped, ok := standardEvents[strings.ToLower(strings.TrimSpace(name))]; ok {
		return mapped
	}
	return name
}
