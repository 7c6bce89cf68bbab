// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package detection

import "testing"

func TestBotFilter_IsBot(t *testing.T) {
	t.Parallel()

	f := NewBotFilter()

	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{"empty", "", false},
		{"chrome desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36", false},
		{"safari iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1", false},
		{"firefox android", "Mozilla/5.0 (Android 14; Mobile; rv:125.0) Gecko/125.0 Firefox/125.0", false},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"bingbot", "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)", true},
		{"facebook preview", "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", true},
		{"headless chrome", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0.0.0 Safari/537.36", true},
		{"curl", "curl/8.4.0", true},
		{"python", "python-requests/2.31.0", true},
		{"go client", "Go-http-client/1.1", true},
		{"uppercase", "SOME-CRAWLER/1.0", true},
		{"whatsapp", "WhatsApp/2.23.20.0", true},
		{"lighthouse", "Mozilla/5.0 (Linux; Android 11; moto g power (2022)) Chrome-Lighthouse", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.IsBot(tt.ua); got != tt.want {
				t.Errorf("IsBot(%q) = %v, want %v", tt.ua, got, tt.want)
			}
		})
	}
}

func TestBotFilter_Match(t *testing.T) {
	t.Parallel()

	f := NewBotFilter()
	sig, ok := f.Match("Mozilla/5.0 (compatible; YandexBot/3.0)")
	if !ok {
		t.Fatal("expected a match")
	}
	if sig != "yandexbot" && sig != "bot" {
		t.Errorf("Match() signature = %q", sig)
	}
}

func TestBotFilter_ExtraSignatures(t *testing.T) {
	t.Parallel()

	ua := "InternalMonitor/1.0"
	if NewBotFilter().IsBot(ua) {
		t.Fatalf("%q should not match the default list", ua)
	}
	if !NewBotFilter("internalmonitor").IsBot(ua) {
		t.Errorf("%q should match an extra signature", ua)
	}
}
