package panel

// Display texts, kept in Catalan like the physical station panels.
const (
	TextEntering  = "Entra"
	TextAttention = "Atenció!"
	TextNoData    = "Sense dades. Revisa la conexió"

	// TextEmergencyHelp is the static interphone notice shown between alerts.
	TextEmergencyHelp = "Si et trobes malament, utilitza els intèrfons de l'andana per demanar ajuda."
)

// DirectionLabels cycles on the panel header (Catalan, Spanish, English).
var DirectionLabels = [3]string{"Direcció", "Dirección", "Direction"}
