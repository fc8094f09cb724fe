package tmb

// Response shapes for the four TMB v1 endpoints the panel consumes. Field
// names follow the API's Catalan naming (codi = code, nom = name, sentit =
// direction, propers trens = upcoming trains).

// ArrivalsResponse is the iTransit per-station arrivals payload.
type ArrivalsResponse struct {
	Timestamp int64         `json:"timestamp"`
	Linies    []ArrivalLine `json:"linies"`
}

// ArrivalLine groups the station platforms served by one line.
type ArrivalLine struct {
	CodiLinia  int              `json:"codi_linia"`
	NomLinia   string           `json:"nom_linia"`
	NomFamilia string           `json:"nom_familia"`
	ColorLinia string           `json:"color_linia"`
	Estacions  []ArrivalStation `json:"estacions"`
}

// ArrivalStation is one platform (track + direction) of the station.
type ArrivalStation struct {
	CodiVia         int     `json:"codi_via"`
	IDSentit        int     `json:"id_sentit"`
	CodiEstacio     int     `json:"codi_estacio"`
	LiniesTrajectes []Route `json:"linies_trajectes"`
}

// Route is a line service through a platform with its upcoming trains.
type Route struct {
	CodiLinia     int             `json:"codi_linia"`
	NomLinia      string          `json:"nom_linia"`
	ColorLinia    string          `json:"color_linia"`
	CodiTrajecte  string          `json:"codi_trajecte"`
	DestiTrajecte string          `json:"desti_trajecte"`
	PropersTrens  []UpcomingTrain `json:"propers_trens"`
}

// UpcomingTrain is a single predicted arrival. TempsArribada is epoch
// milliseconds; TempsTeoric marks scheduled rather than live-tracked times.
type UpcomingTrain struct {
	CodiServei    string `json:"codi_servei,omitempty"`
	TempsArribada int64  `json:"temps_arribada"`
	TempsTeoric   bool   `json:"temps_teoric,omitempty"`
}

// Direction returns the platform for the given direction id (1 or 2), or nil
// when the response does not carry it (yet).
func (r *ArrivalsResponse) Direction(directionID int) *ArrivalStation {
	if r == nil || len(r.Linies) == 0 {
		return nil
	}
	for i := range r.Linies[0].Estacions {
		if r.Linies[0].Estacions[i].IDSentit == directionID {
			return &r.Linies[0].Estacions[i]
		}
	}
	return nil
}

// UpcomingTrains returns the ordered arrivals for a direction, empty when no
// data is available.
func (r *ArrivalsResponse) UpcomingTrains(directionID int) []UpcomingTrain {
	station := r.Direction(directionID)
	if station == nil || len(station.LiniesTrajectes) == 0 {
		return nil
	}
	return station.LiniesTrajectes[0].PropersTrens
}

// LinesResponse is the transit lines GeoJSON feature collection.
type LinesResponse struct {
	Type          string        `json:"type"`
	Features      []LineFeature `json:"features"`
	TotalFeatures int           `json:"totalFeatures"`
}

type LineFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties LineProperties `json:"properties"`
}

type LineProperties struct {
	IDLinia           int    `json:"ID_LINIA"`
	CodiLinia         int    `json:"CODI_LINIA"`
	NomLinia          string `json:"NOM_LINIA"`
	DescLinia         string `json:"DESC_LINIA"`
	OrigenLinia       string `json:"ORIGEN_LINIA"`
	DestiLinia        string `json:"DESTI_LINIA"`
	ColorLinia        string `json:"COLOR_LINIA"`
	ColorTextLinia    string `json:"COLOR_TEXT_LINIA"`
	NomTipusTransport string `json:"NOM_TIPUS_TRANSPORT"`
	OrdreLinia        int    `json:"ORDRE_LINIA"`
}

// StationsResponse is the stations-per-line GeoJSON feature collection.
type StationsResponse struct {
	Type          string           `json:"type"`
	Features      []StationFeature `json:"features"`
	TotalFeatures int              `json:"totalFeatures"`
}

type StationFeature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Properties StationProperties `json:"properties"`
}

type StationProperties struct {
	CodiEstacioLinia int    `json:"CODI_ESTACIO_LINIA"`
	CodiGrupEstacio  int    `json:"CODI_GRUP_ESTACIO"`
	IDGrupEstacio    int    `json:"ID_GRUP_ESTACIO"`
	CodiEstacio      int    `json:"CODI_ESTACIO"`
	NomEstacio       string `json:"NOM_ESTACIO"`
	OrdreEstacio     int    `json:"ORDRE_ESTACIO"`
	CodiLinia        int    `json:"CODI_LINIA"`
	NomLinia         string `json:"NOM_LINIA"`
	OrigenServei     string `json:"ORIGEN_SERVEI"`
	DestiServei      string `json:"DESTI_SERVEI"`
	ColorLinia       string `json:"COLOR_LINIA"`
}

// trunkLines are line variants whose platforms share a station grouping, so
// stations are selected by group code instead of per-platform code.
var trunkLines = map[string]bool{
	"L9N":  true,
	"L9S":  true,
	"L10N": true,
	"L10S": true,
}

// IsTrunkLine reports whether stations of the line must be looked up by
// station group code.
func IsTrunkLine(lineName string) bool {
	return trunkLines[lineName]
}

// StationCode returns the code to use for the arrivals endpoint: the group
// code on trunk lines, the per-platform code everywhere else.
func (p StationProperties) StationCode() int {
	if IsTrunkLine(p.NomLinia) {
		return p.CodiGrupEstacio
	}
	return p.CodiEstacioLinia
}

// Destination returns the headsign for a direction id.
func (p StationProperties) Destination(directionID int) string {
	if directionID == 2 {
		return p.OrigenServei
	}
	return p.DestiServei
}

// AlertsResponse is the per-line alerts payload.
type AlertsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Alerts []Alert `json:"alerts"`
	} `json:"data"`
}

// Alert is one service disruption. Identity is the source-assigned id, which
// stays stable across polls.
type Alert struct {
	ID              int              `json:"id"`
	DisruptionDates []DisruptionDate `json:"disruption_dates,omitempty"`
	Entities        []AlertEntity    `json:"entities"`
	Publications    []Publication    `json:"publications"`
}

type DisruptionDate struct {
	BeginDate int64 `json:"begin_date"`
	EndDate   int64 `json:"end_date"`
}

// AlertEntity is a line/station affected by the disruption.
type AlertEntity struct {
	LineCode      string `json:"line_code"`
	LineName      string `json:"line_name"`
	StationCode   string `json:"station_code"`
	StationName   string `json:"station_name"`
	DirectionCode string `json:"direction_code,omitempty"`
	DirectionName string `json:"direction_name,omitempty"`
}

// Publication is a localized disruption notice.
type Publication struct {
	HeaderCa  string `json:"headerCa"`
	HeaderEs  string `json:"headerEs"`
	HeaderEn  string `json:"headerEn"`
	TextCa    string `json:"textCa"`
	TextEs    string `json:"textEs"`
	TextEn    string `json:"textEn"`
	BeginDate int64  `json:"begin_date"`
	EndDate   int64  `json:"end_date"`
}

// Header returns the first available localized header (ca, es, en).
func (p Publication) Header() string {
	return firstNonEmpty(p.HeaderCa, p.HeaderEs, p.HeaderEn)
}

// Text returns the first available localized body (ca, es, en).
func (p Publication) Text() string {
	return firstNonEmpty(p.TextCa, p.TextEs, p.TextEn)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
