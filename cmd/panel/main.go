package main

import (
	"context"
	"flag"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/00b1b1/tmb-pantalles/internal/config"
	"github.com/00b1b1/tmb-pantalles/internal/coordinator"
	"github.com/00b1b1/tmb-pantalles/internal/panel"
	"github.com/00b1b1/tmb-pantalles/internal/shareurl"
	"github.com/00b1b1/tmb-pantalles/internal/tmb"
	"github.com/00b1b1/tmb-pantalles/internal/ui"
)

func main() {
	_ = godotenv.Load()

	shareLink := flag.String("url", "", "shareable link or query string to seed the panel configuration")
	flag.Parse()

	cfg := config.Load()
	if cfg.TMBAppID == "" || cfg.TMBAppKey == "" {
		log.Fatal("TMB_APP_ID and TMB_APP_KEY must be set")
	}

	panelCfg := resolvePanelConfig(cfg, *shareLink)
	log.Printf("Panel: %s station %d direction %d (alerts=%v)",
		panelCfg.LineName, panelCfg.StationCode, panelCfg.DirectionID, panelCfg.ShowAlert)

	client := tmb.NewClient(cfg.TMBBaseURL, cfg.TMBAppID, cfg.TMBAppKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord := coordinator.New(client, cfg.ArrivalsInterval, cfg.AlertsInterval)
	coord.SetSelection(coordinator.Selection{
		LineCode:    panelCfg.LineCode,
		LineName:    panelCfg.LineName,
		StationCode: panelCfg.StationCode,
		ShowAlert:   panelCfg.ShowAlert,
	})
	coord.Run(ctx)

	program := tea.NewProgram(ui.NewModel(panelCfg, coord), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("Panel exited with error: %v", err)
	}
}

// resolvePanelConfig seeds the session configuration: a shareable link wins,
// then the YAML panel file, then the built-in defaults.
func resolvePanelConfig(cfg *config.Config, shareLink string) panel.Config {
	if shareLink != "" {
		var (
			panelCfg panel.Config
			ok       bool
		)
		if strings.Contains(shareLink, "://") {
			panelCfg, ok = shareurl.DecodeURL(shareLink)
		} else {
			panelCfg, ok = shareurl.Decode(shareLink)
		}
		if ok {
			return panelCfg
		}
		log.Printf("Panel: link carries no configuration, falling back")
	}

	if cfg.PanelFile != "" {
		panelCfg, err := config.LoadPanelFile(cfg.PanelFile)
		if err == nil {
			return panelCfg
		}
		log.Printf("Panel: %v, falling back to defaults", err)
	}

	return panel.DefaultConfig()
}
