// Pixelgate - Storefront Event Ingestion and Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pixelgate

package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// Shape identifies which wire format a beacon arrived in.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeGraphQL
	ShapeBeacon
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeGraphQL:
		return "graphql"
	case ShapeBeacon:
		return "beacon"
	default:
		return "unknown"
	}
}

// Payload is a decoded beacon: the flat field map after unwrapping, plus
// the shape it came from. Numbers are json.Number.
type Payload struct {
	Shape  Shape
	Fields map[string]any
}

// DecodeBody decodes a POST body, unwrapping a GraphQL envelope
// ({query, variables: {input: {...}}}) when present.
func DecodeBody(body []byte) (Payload, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return Payload{}, err
	}

	vars, hasVars := obj["variables"]
	_, hasQuery := obj["query"]
	if !hasVars || (!hasQuery && !isObjectWithInput(vars)) {
		return Payload{Shape: ShapeFlat, Fields: obj}, nil
	}

	varsObj, ok := vars.(map[string]any)
	if !ok {
		return Payload{}, fmt.Errorf("%w: variables must be an object", ErrInvalidPayload)
	}
	input, ok := varsObj["input"].(map[string]any)
	if !ok {
		return Payload{}, fmt.Errorf("%w: variables.input must be an object", ErrInvalidPayload)
	}
	return Payload{Shape: ShapeGraphQL, Fields: input}, nil
}

func isObjectWithInput(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["input"]
	return ok
}

// DecodeBeacon decodes an image beacon query: e=<eventName>&d=<base64 JSON>.
// d may be standard or URL-safe base64, padded or not. e only fills the
// event name when d does not carry one.
func DecodeBeacon(q url.Values) (Payload, error) {
	fields := map[string]any{}

	if d := q.Get("d"); d != "" {
		raw, err := decodeBase64(d)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: d is not base64: %v", ErrInvalidPayload, err)
		}
		if fields, err = decodeObject(raw); err != nil {
			return Payload{}, err
		}
	}

	if e := strings.TrimSpace(q.Get("e")); e != "" && !hasNonBlank(fields, eventNameKeys) {
		fields["eventName"] = e
	}

	return Payload{Shape: ShapeBeacon, Fields: fields}, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}
	return obj, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	// An unescaped '+' in a query string arrives as a space.
	s = strings.ReplaceAll(s, " ", "+")
	s = strings.TrimRight(s, "=")

	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}
