package panel

import "testing"

func TestTimeRemaining(t *testing.T) {
	const now = int64(1_700_000_000_000)

	tests := []struct {
		name     string
		offsetMs int64
		simplify bool
		expected string
	}{
		// Train already here or in the past
		{"arrival in the past", -5_000, false, "Entra"},
		{"arrival right now", 0, false, "Entra"},

		// Within the entering threshold
		{"10 seconds away", 10_000, false, "Entra"},
		{"exactly 15 seconds", 15_000, false, "Entra"},
		{"just over threshold", 16_000, false, "00:16"},

		// Regular countdowns
		{"45 seconds", 45_000, false, "00:45"},
		{"2m05s full", 125_000, false, "02:05"},
		{"10m00s full", 600_000, false, "10:00"},

		// Simplified (second train)
		{"2m05s simplified", 125_000, true, "2 min"},
		{"5m30s simplified", 330_000, true, "5 min"},
		{"under 2 min not simplified", 95_000, true, "01:35"},
		{"simplified but entering", 10_000, true, "Entra"},

		// Sub-second remainder floors to the entering label
		{"999ms", 999, false, "Entra"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TimeRemaining(now+tc.offsetMs, now, tc.simplify)
			if got != tc.expected {
				t.Errorf("TimeRemaining(now+%dms, simplify=%v) = %q, want %q",
					tc.offsetMs, tc.simplify, got, tc.expected)
			}
		})
	}
}
