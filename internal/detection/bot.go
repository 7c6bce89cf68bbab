// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

// Package detection identifies non-human traffic before any work is done
// for a beacon. Crawlers and link preview fetchers execute the storefront
// snippet too; counting them would inflate pageviews and sessions.
package detection

import (
	"github.com/tomtom215/pixelgate/internal/cache"
)

// DefaultBotSignatures are matched case-insensitively as substrings of the
// User-Agent header.
var DefaultBotSignatures = []string{
	// search crawlers
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
	"yandexbot", "applebot", "ahrefsbot", "semrushbot", "mj12bot",
	"dotbot", "petalbot", "sogou", "exabot", "seznambot",

	// social and chat link previews
	"facebookexternalhit", "facebookcatalog", "twitterbot", "linkedinbot",
	"slackbot", "discordbot", "whatsapp", "telegrambot", "pinterest",
	"embedly", "skypeuripreview",

	// headless browsers and automation
	"headlesschrome", "phantomjs", "puppeteer", "playwright", "selenium",
	"webdriver", "lighthouse", "chrome-lighthouse", "pagespeed",

	// validators and uptime monitors
	"w3c_validator", "pingdom", "uptimerobot", "statuscake", "site24x7",

	// generic markers and HTTP libraries
	"bot", "crawler", "spider", "scraper", "curl", "wget",
	"python-requests", "python-urllib", "go-http-client", "java/",
	"okhttp", "axios", "node-fetch", "libwww-perl", "httpclient",
}

// BotFilter classifies user agents. Safe for concurrent use.
type BotFilter struct {
	matcher *cache.Matcher
}

// NewBotFilter builds a filter over DefaultBotSignatures plus extra.
func NewBotFilter(extra ...string) *BotFilter {
	sigs := make([]string, 0, len(DefaultBotSignatures)+len(extra))
	sigs = append(sigs, DefaultBotSignatures...)
	sigs = append(sigs, extra...)
	return &BotFilter{matcher: cache.NewMatcher(sigs)}
}

// IsBot reports whether userAgent matches a known bot signature.
// An empty user agent is not a bot: server-side relays often omit it.
func (f *BotFilter) IsBot(userAgent string) bool {
	return userAgent != "" && f.matcher.Contains(userAgent)
}

// Match returns the first signature found in userAgent.
func (f *BotFilter) Match(userAgent string) (string, bool) {
	if userAgent == "" {
		return "", false
	}
	return f.matcher.First(userAgent)
}
