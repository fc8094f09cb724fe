package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/00b1b1/tmb-pantalles/internal/panel"
	"github.com/00b1b1/tmb-pantalles/internal/shareurl"
)

// Config holds process-level settings for both binaries.
type Config struct {
	// TMB API
	TMBBaseURL string
	TMBAppID   string
	TMBAppKey  string

	// Poll intervals
	ArrivalsInterval time.Duration
	AlertsInterval   time.Duration

	// HTTP facade
	Port         string
	ShareBaseURL string
	CORSOrigins  string

	// Optional YAML file with panel defaults for kiosk deployments
	PanelFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		TMBBaseURL: getEnv("TMB_BASE_URL", ""),
		TMBAppID:   getEnv("TMB_APP_ID", ""),
		TMBAppKey:  getEnv("TMB_APP_KEY", ""),

		ArrivalsInterval: time.Duration(getEnvInt("ARRIVALS_INTERVAL", 30)) * time.Second,
		AlertsInterval:   time.Duration(getEnvInt("ALERTS_INTERVAL", 60)) * time.Second,

		Port:         getEnv("PORT", "8081"),
		ShareBaseURL: getEnv("SHARE_BASE_URL", "https://pantalles.tmb.cat"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:5173"),

		PanelFile: getEnv("PANEL_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// panelFile is the YAML shape of a panel-defaults file.
type panelFile struct {
	Line       string            `yaml:"line"`
	Station    int               `yaml:"station"`
	Direction  int               `yaml:"direction"`
	Alerts     bool              `yaml:"alerts"`
	Emergency  *bool             `yaml:"emergency"`
	HideConfig bool              `yaml:"hide_config"`
	AlertIDs   []int             `yaml:"alert_ids"`
	Custom     []customAlertYAML `yaml:"custom_alerts"`
}

type customAlertYAML struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Content     string `yaml:"content"`
	BgColor     string `yaml:"bg_color"`
	TextColor   string `yaml:"text_color"`
	HeaderColor string `yaml:"header_color"`
	IconName    string `yaml:"icon"`
	Active      *bool  `yaml:"active"`
}

// LoadPanelFile reads a panel configuration from a YAML file. Unset optional
// booleans keep the same defaults as the share-URL codec (emergency on,
// custom alerts active).
func LoadPanelFile(path string) (panel.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return panel.Config{}, fmt.Errorf("failed to read panel file: %w", err)
	}

	var pf panelFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return panel.Config{}, fmt.Errorf("failed to parse panel file: %w", err)
	}
	if pf.Line == "" {
		return panel.Config{}, fmt.Errorf("panel file %s: line is required", path)
	}

	cfg := panel.Config{
		LineName:           pf.Line,
		StationCode:        pf.Station,
		DirectionID:        pf.Direction,
		ShowAlert:          pf.Alerts,
		ShowEmergencyAlert: pf.Emergency == nil || *pf.Emergency,
		HideConfigButton:   pf.HideConfig,
		ActiveAlertIDs:     pf.AlertIDs,
	}
	if cfg.DirectionID != 1 && cfg.DirectionID != 2 {
		cfg.DirectionID = 1
	}
	for _, ca := range pf.Custom {
		cfg.CustomAlerts = append(cfg.CustomAlerts, panel.CustomAlert{
			ID:          ca.ID,
			Title:       ca.Title,
			Content:     ca.Content,
			BgColor:     ca.BgColor,
			TextColor:   ca.TextColor,
			HeaderColor: ca.HeaderColor,
			IconName:    ca.IconName,
			IsActive:    ca.Active == nil || *ca.Active,
		})
	}

	cfg.LineCode = shareurl.LineCodeFromName(pf.Line)

	return cfg, nil
}
