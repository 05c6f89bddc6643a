// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package ingest

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitepulse/internal/models"
	"github.com/tomtom215/sitepulse/internal/validation"
)

// Submission is an envelope that passed structural validation. Payload and
// Meta are still untyped; Normalize maps them per variant.
type Submission struct {
	SiteID  string
	Type    models.EventType
	Payload map[string]interface{}
	Meta    map[string]interface{}
}

// Parse decodes and validates a raw request body. Checks run in a fixed
// order and stop at the first failure:
//
//  1. valid JSON                 -> *ParseError
//  2. top-level JSON object      -> MsgInvalidBody
//  3. siteId non-blank string    -> MsgInvalidSiteID
//  4. type in the closed set     -> MsgInvalidEventType
//  5. payload non-null object    -> MsgInvalidPayload
//  6. meta non-null object       -> MsgInvalidMeta
func Parse(body []byte) (*Submission, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, invalid(MsgInvalidBody)
	}

	rawSiteID, _ := obj["siteId"].(string)
	siteID, ok := validation.NormalizeSiteID(rawSiteID)
	if !ok {
		return nil, invalid(MsgInvalidSiteID)
	}

	typeStr, _ := obj["type"].(string)
	eventType, ok := models.ParseEventType(typeStr)
	if !ok {
		return nil, invalid(MsgInvalidEventType)
	}

	payload, ok := obj["payload"].(map[string]interface{})
	if !ok || payload == nil {
		return nil, invalid(MsgInvalidPayload)
	}

	meta, ok := obj["meta"].(map[string]interface{})
	if !ok || meta == nil {
		return nil, invalid(MsgInvalidMeta)
	}

	return &Submission{
		SiteID:  siteID,
		Type:    eventType,
		Payload: payload,
		Meta:    meta,
	}, nil
}
