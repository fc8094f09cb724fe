package shareurl

import (
	"encoding/base64"
	"net/url"
	"reflect"
	"testing"

	"github.com/00b1b1/tmb-pantalles/internal/panel"
)

func TestDecodeBasicQuery(t *testing.T) {
	cfg, ok := Decode("?line=L4&station=428&direction=1&alerts=true")
	if !ok {
		t.Fatal("expected a config")
	}

	want := panel.Config{
		LineCode:           4,
		LineName:           "L4",
		StationCode:        428,
		DirectionID:        1,
		ShowAlert:          true,
		ShowEmergencyAlert: true,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("decoded %+v, want %+v", cfg, want)
	}
}

func TestDecodeMissingLineMeansNoConfig(t *testing.T) {
	for _, query := range []string{"", "station=428&direction=2", "?alerts=true"} {
		if _, ok := Decode(query); ok {
			t.Errorf("Decode(%q) should report no config", query)
		}
	}
}

func TestDecodeDefaultsAndCoercion(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, cfg panel.Config)
	}{
		{"missing station defaults to 0", "line=L1", func(t *testing.T, cfg panel.Config) {
			if cfg.StationCode != 0 {
				t.Errorf("station = %d, want 0", cfg.StationCode)
			}
		}},
		{"invalid station defaults to 0", "line=L1&station=abc", func(t *testing.T, cfg panel.Config) {
			if cfg.StationCode != 0 {
				t.Errorf("station = %d, want 0", cfg.StationCode)
			}
		}},
		{"missing direction defaults to 1", "line=L1", func(t *testing.T, cfg panel.Config) {
			if cfg.DirectionID != 1 {
				t.Errorf("direction = %d, want 1", cfg.DirectionID)
			}
		}},
		{"out-of-range direction coerced to 1", "line=L1&direction=3", func(t *testing.T, cfg panel.Config) {
			if cfg.DirectionID != 1 {
				t.Errorf("direction = %d, want 1", cfg.DirectionID)
			}
		}},
		{"direction 2 kept", "line=L1&direction=2", func(t *testing.T, cfg panel.Config) {
			if cfg.DirectionID != 2 {
				t.Errorf("direction = %d, want 2", cfg.DirectionID)
			}
		}},
		{"alerts only on literal true", "line=L1&alerts=TRUE", func(t *testing.T, cfg panel.Config) {
			if cfg.ShowAlert {
				t.Error("alerts should require the literal \"true\"")
			}
		}},
		{"emergency only off on literal false", "line=L1&emergency=no", func(t *testing.T, cfg panel.Config) {
			if !cfg.ShowEmergencyAlert {
				t.Error("emergency should stay on unless literally \"false\"")
			}
		}},
		{"emergency disabled", "line=L1&emergency=false", func(t *testing.T, cfg panel.Config) {
			if cfg.ShowEmergencyAlert {
				t.Error("emergency should be off")
			}
		}},
		{"alert ids drop junk tokens", "line=L1&alertIds=1,x,3,,4", func(t *testing.T, cfg panel.Config) {
			want := []int{1, 3, 4}
			if !reflect.DeepEqual(cfg.ActiveAlertIDs, want) {
				t.Errorf("alert ids = %v, want %v", cfg.ActiveAlertIDs, want)
			}
		}},
		{"trunk line code", "line=L9N", func(t *testing.T, cfg panel.Config) {
			if cfg.LineCode != 9 {
				t.Errorf("line code = %d, want 9", cfg.LineCode)
			}
		}},
		{"non-numeric line name yields 0", "line=FM", func(t *testing.T, cfg panel.Config) {
			if cfg.LineCode != 0 {
				t.Errorf("line code = %d, want 0", cfg.LineCode)
			}
		}},
		{"broken customAlerts treated as empty", "line=L1&customAlerts=%%%", func(t *testing.T, cfg panel.Config) {
			if len(cfg.CustomAlerts) != 0 {
				t.Errorf("custom alerts = %v, want empty", cfg.CustomAlerts)
			}
		}},
		{"undecodable base64 treated as empty", "line=L1&customAlerts=!!!!", func(t *testing.T, cfg panel.Config) {
			if len(cfg.CustomAlerts) != 0 {
				t.Errorf("custom alerts = %v, want empty", cfg.CustomAlerts)
			}
		}},
		{"non-json payload treated as empty", "line=L1&customAlerts=" + base64.StdEncoding.EncodeToString([]byte("not json")), func(t *testing.T, cfg panel.Config) {
			if len(cfg.CustomAlerts) != 0 {
				t.Errorf("custom alerts = %v, want empty", cfg.CustomAlerts)
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, ok := Decode(tc.query)
			if !ok {
				t.Fatalf("Decode(%q) reported no config", tc.query)
			}
			tc.check(t, cfg)
		})
	}
}

func TestEncodeOmitsDefaults(t *testing.T) {
	cfg := panel.Config{
		LineCode:           4,
		LineName:           "L4",
		StationCode:        428,
		DirectionID:        1,
		ShowEmergencyAlert: true,
	}

	params, err := url.ParseQuery(Encode(cfg))
	if err != nil {
		t.Fatalf("encoded query does not parse: %v", err)
	}

	for _, key := range []string{"alerts", "emergency", "hideConfig", "alertIds", "customAlerts"} {
		if params.Has(key) {
			t.Errorf("default config should omit %s, got %q", key, params.Get(key))
		}
	}
	if params.Get("line") != "L4" || params.Get("station") != "428" || params.Get("direction") != "1" {
		t.Errorf("required keys wrong: %v", params)
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := panel.Config{
		LineCode:           4,
		LineName:           "L4",
		StationCode:        428,
		DirectionID:        2,
		ShowAlert:          true,
		ShowEmergencyAlert: false,
		HideConfigButton:   true,
		ActiveAlertIDs:     []int{12, 34},
		CustomAlerts: []panel.CustomAlert{{
			ID:          "1",
			Title:       "T",
			Content:     "C",
			BgColor:     "#fff",
			TextColor:   "#000",
			HeaderColor: "#000",
			IconName:    "X.svg",
			IsActive:    true,
		}},
	}

	decoded, ok := Decode(Encode(cfg))
	if !ok {
		t.Fatal("round trip lost the config")
	}
	if !reflect.DeepEqual(decoded, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, cfg)
	}

	// Stability: encode(decode(encode(cfg))) reproduces the same string.
	if again := Encode(decoded); again != Encode(cfg) {
		t.Errorf("encoding is not canonical:\n got %s\nwant %s", again, Encode(cfg))
	}
}

func TestDecodeLegacyBareArrayPayload(t *testing.T) {
	// Links generated before payload versioning carry a bare JSON array.
	legacy := base64.StdEncoding.EncodeToString([]byte(
		`[{"id":"1","title":"T","content":"C","bgColor":"#fff","textColor":"#000","headerColor":"#000","iconName":"X.svg","isActive":true}]`))

	cfg, ok := Decode("line=L4&station=428&direction=1&customAlerts=" + url.QueryEscape(legacy))
	if !ok {
		t.Fatal("expected a config")
	}
	if len(cfg.CustomAlerts) != 1 || cfg.CustomAlerts[0].Title != "T" {
		t.Errorf("legacy custom alerts = %+v", cfg.CustomAlerts)
	}
}

func TestEncodeURL(t *testing.T) {
	cfg := panel.Config{LineName: "L4", StationCode: 428, DirectionID: 1, ShowEmergencyAlert: true}
	link := EncodeURL("https://example.org", cfg)

	decoded, ok := DecodeURL(link)
	if !ok {
		t.Fatal("DecodeURL lost the config")
	}
	if decoded.LineName != "L4" || decoded.StationCode != 428 {
		t.Errorf("decoded %+v", decoded)
	}
}
