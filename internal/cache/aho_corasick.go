// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package cache

import "strings"

// Matcher is an Aho-Corasick automaton over lower-cased bytes. It answers
// "does any pattern occur in this text" in one pass over the text,
// regardless of how many patterns there are.
//
// A Matcher is immutable once built and safe for concurrent use.
//
//	m := cache.NewMatcher([]string{"googlebot", "curl", "headlesschrome"})
//	m.Contains("Mozilla/5.0 (compatible; Googlebot/2.1)") // true
type Matcher struct {
	nodes    []acNode
	patterns []string
}

type acNode struct {
	next map[byte]int32
	fail int32
	// out is the index of a pattern ending here (directly or via a
	// failure link), or -1.
	out int32
}

// NewMatcher builds a case-insensitive matcher. Empty patterns are ignored.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{nodes: []acNode{{next: map[byte]int32{}, out: -1}}}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		m.insert(strings.ToLower(p))
	}
	m.link()
	return m
}

func (m *Matcher) insert(p string) {
	cur := int32(0)
	for i := 0; i < len(p); i++ {
		nxt, ok := m.nodes[cur].next[p[i]]
		if !ok {
			nxt = int32(len(m.nodes))
			m.nodes = append(m.nodes, acNode{next: map[byte]int32{}, out: -1})
			m.nodes[cur].next[p[i]] = nxt
		}
		cur = nxt
	}
	if m.nodes[cur].out < 0 {
		m.nodes[cur].out = int32(len(m.patterns))
		m.patterns = append(m.patterns, p)
	}
}

// link computes failure links breadth-first.
func (m *Matcher) link() {
	queue := make([]int32, 0, len(m.nodes))
	for _, child := range m.nodes[0].next {
		m.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for b, child := range m.nodes[cur].next {
			queue = append(queue, child)

			f := m.nodes[cur].fail
			for {
				if nxt, ok := m.nodes[f].next[b]; ok && nxt != child {
					m.nodes[child].fail = nxt
					break
				}
				if f == 0 {
					m.nodes[child].fail = 0
					break
				}
				f = m.nodes[f].fail
			}

			if m.nodes[child].out < 0 {
				m.nodes[child].out = m.nodes[m.nodes[child].fail].out
			}
		}
	}
}

// First returns the first pattern (by end position) found in text.
func (m *Matcher) First(text string) (string, bool) {
	if len(m.patterns) == 0 {
		return "", false
	}

	cur := int32(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}

		for {
			if nxt, ok := m.nodes[cur].next[b]; ok {
				cur = nxt
				break
			}
			if cur == 0 {
				break
			}
			cur = m.nodes[cur].fail
		}

		if out := m.nodes[cur].out; out >= 0 {
			return m.patterns[out], true
		}
	}
	return "", false
}

// Contains reports whether any pattern occurs in text.
func (m *Matcher) Contains(text string) bool {
	_, ok := m.First(text)
	return ok
}

// Len returns the number of distinct patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}
