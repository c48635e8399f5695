package geodata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	facilitiesProvider = "facilities"

	DefaultFacilitiesLimit = 50
	unnamedFacility        = "Unnamed facility"
	genericFacilityType    = "facility"
)

// facilityTags are the Overpass selectors searched around the point.
var facilityTags = []string{
	`["amenity"~"marketplace|veterinary|fuel|bank|atm"]`,
	`["shop"~"agrarian|farm|garden_centre|hardware|doityourself|trade"]`,
	`["craft"~"agricultural_engines|blacksmith|beekeeper"]`,
	`["office"="agricultural"]`,
	`["landuse"="farmyard"]["name"]`,
	`["man_made"~"silo|storage_tank|water_well"]`,
}

// typeTags are checked in order to categorise an element.
var typeTags = []string{"amenity", "shop", "craft", "office", "landuse", "man_made"}

// FacilitiesFetcher loads points of interest around a point from an upstream provider.
type FacilitiesFetcher interface {
	FetchFacilities(ctx context.Context, q FacilitiesQuery) (FacilitiesResult, error)
}

// FacilitiesClient queries an Overpass API interpreter endpoint.
type FacilitiesClient struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
	HTTP    *http.Client
}

func (c *FacilitiesClient) FetchFacilities(ctx context.Context, q FacilitiesQuery) (FacilitiesResult, error) {
	limit := c.limit()
	form := url.Values{}
	form.Set("data", BuildOverpassQuery(q, limit, c.Timeout))
	payload := form.Encode()

	body, err := doUpstream(ctx, c.HTTP, facilitiesProvider, c.Timeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBufferString(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return FacilitiesResult{}, err
	}

	return NormalizeFacilities(body, limit)
}

func (c *FacilitiesClient) limit() int {
	if c.Limit <= 0 {
		return DefaultFacilitiesLimit
	}
	return c.Limit
}

// BuildOverpassQuery renders the Overpass QL selecting nodes and ways near q.
func BuildOverpassQuery(q FacilitiesQuery, limit int, timeout time.Duration) string {
	serverTimeout := int(timeout.Seconds())
	if serverTimeout <= 0 {
		serverTimeout = 25
	}
	around := fmt.Sprintf("(around:%s,%s,%s)",
		strconv.FormatFloat(q.RadiusMeters(), 'f', -1, 64), q.Point.Lat, q.Point.Lng)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", serverTimeout)
	for _, tag := range facilityTags {
		fmt.Fprintf(&b, "  node%s%s;\n", tag, around)
		fmt.Fprintf(&b, "  way%s%s;\n", tag, around)
	}
	fmt.Fprintf(&b, ");\nout center %d;", limit)
	return b.String()
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     any               `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NormalizeFacilities maps Overpass elements to facilities. Elements without
// both coordinates (directly or via their center) are dropped; at most limit
// facilities are returned.
func NormalizeFacilities(body []byte, limit int) (FacilitiesResult, error) {
	if limit <= 0 {
		limit = DefaultFacilitiesLimit
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var resp overpassResponse
	if err := dec.Decode(&resp); err != nil {
		return FacilitiesResult{}, fmt.Errorf("decode facilities response: %w", err)
	}

	out := FacilitiesResult{Facilities: make([]Facility, 0, min(len(resp.Elements), limit))}
	for _, el := range resp.Elements {
		if len(out.Facilities) >= limit {
			break
		}
		lat, lng, ok := el.position()
		if !ok {
			continue
		}
		out.Facilities = append(out.Facilities, Facility{
			ID:   stringifyID(el.ID),
			Name: el.name(),
			Type: el.category(),
			Lat:  lat,
			Lng:  lng,
		})
	}
	return out, nil
}

func (e overpassElement) position() (float64, float64, bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil && e.Center.Lat != nil && e.Center.Lon != nil {
		return *e.Center.Lat, *e.Center.Lon, true
	}
	return 0, 0, false
}

func (e overpassElement) name() string {
	if n := strings.TrimSpace(e.Tags["name"]); n != "" {
		return n
	}
	return unnamedFacility
}

func (e overpassElement) category() string {
	for _, t := range typeTags {
		if v := strings.TrimSpace(e.Tags[t]); v != "" {
			return v
		}
	}
	return genericFacilityType
}

func stringifyID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
