package panel

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config is the whole panel configuration. It lives for the process session:
// seeded from a shareable URL (or defaults), mutated only by user actions.
type Config struct {
	LineCode           int
	LineName           string
	StationCode        int
	DirectionID        int
	ShowAlert          bool
	ShowEmergencyAlert bool
	ActiveAlertIDs     []int
	CustomAlerts       []CustomAlert
	HideConfigButton   bool
}

// CustomAlert is a user-authored notice carried only inside the shareable
// configuration, never sourced from the API.
type CustomAlert struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	BgColor     string `json:"bgColor"`
	TextColor   string `json:"textColor"`
	HeaderColor string `json:"headerColor"`
	IconName    string `json:"iconName"`
	IsActive    bool   `json:"isActive"`
}

// DefaultConfig is the out-of-the-box panel: L4 at Joanic towards Trinitat
// Nova, official alerts off, interphone notice on.
func DefaultConfig() Config {
	return Config{
		LineCode:           4,
		LineName:           "L4",
		StationCode:        428,
		DirectionID:        1,
		ShowAlert:          false,
		ShowEmergencyAlert: true,
	}
}

// NewCustomAlert returns a fresh alert with the configurator's defaults and a
// timestamp-derived id, unique within the config.
func (c *Config) NewCustomAlert() CustomAlert {
	return CustomAlert{
		ID:          c.nextAlertID(),
		Title:       "Nova Alerta",
		Content:     "Alertes Personalitzades",
		BgColor:     "#FFE501",
		TextColor:   "#000000",
		HeaderColor: "#000000",
		IconName:    "FGC.svg",
		IsActive:    true,
	}
}

// nextAlertID derives an id from the current time; on collision (two adds in
// the same millisecond, or an imported config reusing the value) it falls
// back to a random one.
func (c *Config) nextAlertID() string {
	id := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if c.findCustomAlert(id) == -1 {
		return id
	}
	return uuid.NewString()
}

// UpsertCustomAlert saves an edited alert in place, or appends it when the id
// is new. Alerts without an id get one assigned; the assigned id is returned.
func (c *Config) UpsertCustomAlert(alert CustomAlert) string {
	if alert.ID == "" {
		alert.ID = c.nextAlertID()
	}
	if i := c.findCustomAlert(alert.ID); i >= 0 {
		c.CustomAlerts[i] = alert
	} else {
		c.CustomAlerts = append(c.CustomAlerts, alert)
	}
	return alert.ID
}

// DeleteCustomAlert removes the alert with the given id, reporting whether it
// existed.
func (c *Config) DeleteCustomAlert(id string) bool {
	i := c.findCustomAlert(id)
	if i < 0 {
		return false
	}
	c.CustomAlerts = append(c.CustomAlerts[:i], c.CustomAlerts[i+1:]...)
	return true
}

// ToggleCustomAlert flips an alert's active flag, reporting whether the id
// was found.
func (c *Config) ToggleCustomAlert(id string) bool {
	i := c.findCustomAlert(id)
	if i < 0 {
		return false
	}
	c.CustomAlerts[i].IsActive = !c.CustomAlerts[i].IsActive
	return true
}

func (c *Config) findCustomAlert(id string) int {
	for i := range c.CustomAlerts {
		if c.CustomAlerts[i].ID == id {
			return i
		}
	}
	return -1
}

// SetShowAlert toggles the official-alerts system. Turning it on with no
// selection yet activates every currently-known disruption, so an operator
// enabling alerts sees them immediately.
func (c *Config) SetShowAlert(enabled bool, knownIDs []int) {
	c.ShowAlert = enabled
	if enabled && len(c.ActiveAlertIDs) == 0 {
		c.ActiveAlertIDs = append([]int(nil), knownIDs...)
	}
}

// ToggleAlertID flips membership of a disruption id in the active set.
func (c *Config) ToggleAlertID(id int) {
	for i, existing := range c.ActiveAlertIDs {
		if existing == id {
			c.ActiveAlertIDs = append(c.ActiveAlertIDs[:i], c.ActiveAlertIDs[i+1:]...)
			return
		}
	}
	c.ActiveAlertIDs = append(c.ActiveAlertIDs, id)
}

// HasActiveAlertID reports membership in the active disruption set. Stale ids
// left over from a previous line are tolerated; they just never match.
func (c *Config) HasActiveAlertID(id int) bool {
	for _, existing := range c.ActiveAlertIDs {
		if existing == id {
			return true
		}
	}
	return false
}
