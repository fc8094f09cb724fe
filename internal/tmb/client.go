package tmb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// DefaultBaseURL is the public TMB v1 API root.
const DefaultBaseURL = "https://api.tmb.cat/v1"

// lineProperties is the property subset requested from the lines endpoint.
const lineProperties = "ID_LINIA,CODI_LINIA,NOM_LINIA,DESC_LINIA,ORIGEN_LINIA,DESTI_LINIA,COLOR_LINIA,COLOR_TEXT_LINIA,ID_OPERADOR,ORDRE_FAMILIA,NOM_TIPUS_TRANSPORT,ORDRE_LINIA"

// Client talks to the TMB API. All calls authenticate with the app_id/app_key
// query parameter pair.
type Client struct {
	baseURL string
	appID   string
	appKey  string
	http    *http.Client
}

// NewClient creates a client with the given credentials. An empty baseURL
// selects the public API.
func NewClient(baseURL, appID, appKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		appKey:  appKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Lines fetches all metro lines, sorted by display order. The API mixes
// transport families, so non-METRO records are filtered out here.
func (c *Client) Lines(ctx context.Context) ([]LineFeature, error) {
	q := url.Values{}
	q.Set("propertyName", lineProperties)
	q.Set("sortBy", "ORDRE_LINIA")

	var resp LinesResponse
	if err := c.get(ctx, "/transit/linies/metro/", q, &resp); err != nil {
		return nil, err
	}

	lines := make([]LineFeature, 0, len(resp.Features))
	for _, f := range resp.Features {
		if f.Properties.NomTipusTransport == "METRO" {
			lines = append(lines, f)
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Properties.OrdreLinia < lines[j].Properties.OrdreLinia
	})
	return lines, nil
}

// LineStations fetches the stations of a line in platform order.
func (c *Client) LineStations(ctx context.Context, lineCode int) ([]StationFeature, error) {
	q := url.Values{}
	q.Set("sortBy", "ORDRE_ESTACIO")

	var resp StationsResponse
	path := fmt.Sprintf("/transit/linies/metro/%d/estacions", lineCode)
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Features, nil
}

// StationArrivals fetches the live arrivals for a station on a line,
// including theoretical times for platforms without live tracking.
func (c *Client) StationArrivals(ctx context.Context, stationCode, lineCode int) (*ArrivalsResponse, error) {
	q := url.Values{}
	q.Set("temps_teoric", "true")
	q.Set("codi_linia", strconv.Itoa(lineCode))

	var resp ArrivalsResponse
	path := fmt.Sprintf("/itransit/metro/estacions/%d", stationCode)
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LineAlerts fetches the active disruptions published for a line on the WEB
// channel.
func (c *Client) LineAlerts(ctx context.Context, lineName string) ([]Alert, error) {
	var resp AlertsResponse
	path := fmt.Sprintf("/alerts/metro/channels/WEB/routes/%s", url.PathEscape(lineName))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("TMB alerts returned status %q", resp.Status)
	}
	return resp.Data.Alerts, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("app_id", c.appID)
	query.Set("app_key", c.appKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("TMB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
