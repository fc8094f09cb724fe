// Package shareurl maps a panel configuration to and from the query string of
// a shareable link. The key set is a public, stable surface: links embedded in
// kiosks keep working across releases.
package shareurl

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/00b1b1/tmb-pantalles/internal/panel"
)

// customAlertsVersion tags the customAlerts payload so future field additions
// to CustomAlert do not silently corrupt old links.
const customAlertsVersion = 1

// customAlertsEnvelope is the versioned wire form of the customAlerts param.
// Links generated before versioning carried a bare JSON array; Decode still
// accepts those.
type customAlertsEnvelope struct {
	V      int                 `json:"v"`
	Alerts []panel.CustomAlert `json:"alerts"`
}

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// Encode serializes a configuration into a canonical query string (no leading
// '?'). Defaults are omitted: alerts only appears when enabled, emergency
// only when disabled, hideConfig only when set.
func Encode(cfg panel.Config) string {
	params := url.Values{}

	params.Set("line", cfg.LineName)
	params.Set("station", strconv.Itoa(cfg.StationCode))
	params.Set("direction", strconv.Itoa(cfg.DirectionID))

	if cfg.ShowAlert {
		params.Set("alerts", "true")
	}
	if !cfg.ShowEmergencyAlert {
		params.Set("emergency", "false")
	}
	if cfg.HideConfigButton {
		params.Set("hideConfig", "true")
	}

	if len(cfg.ActiveAlertIDs) > 0 {
		ids := make([]string, len(cfg.ActiveAlertIDs))
		for i, id := range cfg.ActiveAlertIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("alertIds", strings.Join(ids, ","))
	}

	if len(cfg.CustomAlerts) > 0 {
		payload, err := json.Marshal(customAlertsEnvelope{
			V:      customAlertsVersion,
			Alerts: cfg.CustomAlerts,
		})
		if err == nil {
			params.Set("customAlerts", base64.StdEncoding.EncodeToString(payload))
		} else {
			log.Printf("Share URL: failed to marshal custom alerts: %v", err)
		}
	}

	return params.Encode()
}

// EncodeURL builds a full shareable link on the given base URL.
func EncodeURL(base string, cfg panel.Config) string {
	return strings.TrimSuffix(base, "/") + "/?" + Encode(cfg)
}

// Decode parses a query string (with or without a leading '?') into a
// configuration. The second return is false when the line key is absent,
// meaning "no config": the caller should fall back to defaults. Malformed
// values never fail the decode; they degrade to defaults.
func Decode(query string) (panel.Config, bool) {
	query = strings.TrimPrefix(query, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		// ParseQuery keeps the keys it could parse; a mangled value should
		// not take the whole link down.
		log.Printf("Share URL: partially unparseable query string: %v", err)
	}

	lineName := params.Get("line")
	if lineName == "" {
		return panel.Config{}, false
	}

	cfg := panel.Config{
		LineName:           lineName,
		LineCode:           LineCodeFromName(lineName),
		StationCode:        atoiDefault(params.Get("station"), 0),
		DirectionID:        atoiDefault(params.Get("direction"), 1),
		ShowAlert:          params.Get("alerts") == "true",
		ShowEmergencyAlert: params.Get("emergency") != "false",
		HideConfigButton:   params.Get("hideConfig") == "true",
		ActiveAlertIDs:     parseAlertIDs(params.Get("alertIds")),
		CustomAlerts:       parseCustomAlerts(params.Get("customAlerts")),
	}

	if cfg.DirectionID != 1 && cfg.DirectionID != 2 {
		cfg.DirectionID = 1
	}

	return cfg, true
}

// DecodeURL extracts the configuration from a full shareable link.
func DecodeURL(raw string) (panel.Config, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		log.Printf("Share URL: unparseable link: %v", err)
		return panel.Config{}, false
	}
	return Decode(u.RawQuery)
}

// LineCodeFromName derives the numeric line code by stripping non-digit
// characters ("L4" -> 4, "L9N" -> 9). Unparseable names yield 0.
func LineCodeFromName(name string) int {
	digits := nonDigitRe.ReplaceAllString(name, "")
	code, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return code
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// parseAlertIDs splits a comma-joined id list, silently dropping non-numeric
// tokens.
func parseAlertIDs(raw string) []int {
	if raw == "" {
		return nil
	}
	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(tok)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseCustomAlerts decodes the base64 JSON payload. Any failure is logged
// and treated as an empty list; a broken link still yields a working panel.
func parseCustomAlerts(raw string) []panel.CustomAlert {
	if raw == "" {
		return nil
	}

	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		payload, err = base64.URLEncoding.DecodeString(raw)
	}
	if err != nil {
		log.Printf("Share URL: undecodable customAlerts param: %v", err)
		return nil
	}

	var envelope customAlertsEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.V > 0 {
		return envelope.Alerts
	}

	// Legacy links carry a bare array.
	var alerts []panel.CustomAlert
	if err := json.Unmarshal(payload, &alerts); err != nil {
		log.Printf("Share URL: unparseable customAlerts payload: %v", err)
		return nil
	}
	return alerts
}
