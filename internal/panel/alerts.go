package panel

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/00b1b1/tmb-pantalles/internal/tmb"
)

// Entry is one item of the unified alert rotation, derived fresh on every
// change from disruptions + config, never stored.
type Entry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	IsDisruption  bool     `json:"isDisruption"`
	IsCustom      bool     `json:"isCustom"`
	AffectedLines []string `json:"affectedLines,omitempty"`
	BgColor       string   `json:"bgColor,omitempty"`
	TextColor     string   `json:"textColor,omitempty"`
	HeaderColor   string   `json:"headerColor,omitempty"`
	IconName      string   `json:"iconName,omitempty"`
}

// maxHeaderLen is the longest cleaned header that still fits the panel; longer
// ones collapse to the generic attention label.
const maxHeaderLen = 25

var (
	// headerPrefixRe matches internal publication codes like "PP9 " or "PP2 "
	// that prefix disruption headers.
	headerPrefixRe = regexp.MustCompile(`^[A-Z]{2}\d+\s*`)

	htmlTagRe = regexp.MustCompile(`<[^>]*>?`)

	tmbLinkRe = regexp.MustCompile(`https?://(www\.)?tmb\.cat[^\s]*`)
)

// CombineAlerts builds the prioritized alert list for the current tick:
// selected official disruptions first, then the interphone notice, then the
// active custom alerts.
func CombineAlerts(disruptions []tmb.Alert, cfg Config) []Entry {
	var entries []Entry

	for _, d := range disruptions {
		if !cfg.HasActiveAlertID(d.ID) {
			continue
		}
		var header, text string
		if len(d.Publications) > 0 {
			header = d.Publications[0].Header()
			text = d.Publications[0].Text()
		}
		entries = append(entries, Entry{
			ID:            "dis-" + strconv.Itoa(d.ID),
			Title:         CleanHeader(header),
			Content:       CleanText(text),
			IsDisruption:  true,
			AffectedLines: affectedLines(d),
		})
	}

	if cfg.ShowEmergencyAlert {
		entries = append(entries, Entry{
			ID:      "emergency-fallback",
			Title:   TextAttention,
			Content: TextEmergencyHelp,
		})
	}

	for _, ca := range cfg.CustomAlerts {
		if !ca.IsActive {
			continue
		}
		entries = append(entries, Entry{
			ID:          "custom-" + ca.ID,
			Title:       ca.Title,
			Content:     ca.Content,
			IsCustom:    true,
			BgColor:     ca.BgColor,
			TextColor:   ca.TextColor,
			HeaderColor: ca.HeaderColor,
			IconName:    ca.IconName,
		})
	}

	return entries
}

// CleanHeader strips the leading publication code from a disruption header
// and falls back to the attention label when the result is still too long to
// fit.
func CleanHeader(header string) string {
	cleaned := strings.TrimSpace(headerPrefixRe.ReplaceAllString(header, ""))
	if utf8.RuneCountInString(cleaned) > maxHeaderLen {
		return TextAttention
	}
	return cleaned
}

// CleanText strips HTML tags from a disruption body and collapses any tmb.cat
// link to the bare domain.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := htmlTagRe.ReplaceAllString(text, "")
	cleaned = tmbLinkRe.ReplaceAllString(cleaned, "tmb.cat")
	return strings.TrimSpace(cleaned)
}

// affectedLines collects the distinct line names referenced by a disruption,
// in first-seen order.
func affectedLines(alert tmb.Alert) []string {
	var lines []string
	seen := make(map[string]bool)
	for _, e := range alert.Entities {
		if e.LineName == "" || seen[e.LineName] {
			continue
		}
		seen[e.LineName] = true
		lines = append(lines, e.LineName)
	}
	return lines
}

