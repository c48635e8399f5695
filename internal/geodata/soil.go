package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const soilProvider = "soil"

// soilLayers maps SoilGrids layer names to payload fields.
var soilLayers = []struct {
	name  string
	field func(*SoilProperties) **float64
}{
	{"phh2o", func(s *SoilProperties) **float64 { return &s.PH }},
	{"clay", func(s *SoilProperties) **float64 { return &s.Clay }},
	{"sand", func(s *SoilProperties) **float64 { return &s.Sand }},
	{"silt", func(s *SoilProperties) **float64 { return &s.Silt }},
}

// SoilFetcher loads soil properties for a point from an upstream provider.
type SoilFetcher interface {
	FetchSoil(ctx context.Context, p Point) (SoilProperties, error)
}

// SoilClient queries the SoilGrids v2.0 properties endpoint.
type SoilClient struct {
	BaseURL string
	Depth   string
	Timeout time.Duration
	HTTP    *http.Client
}

func (c *SoilClient) FetchSoil(ctx context.Context, p Point) (SoilProperties, error) {
	target, err := c.requestURL(p)
	if err != nil {
		return SoilProperties{}, err
	}

	body, err := doUpstream(ctx, c.HTTP, soilProvider, c.Timeout, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return SoilProperties{}, err
	}

	return NormalizeSoil(body)
}

func (c *SoilClient) requestURL(p Point) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid soil url %q: %w", c.BaseURL, err)
	}

	depth := c.Depth
	if depth == "" {
		depth = "0-5cm"
	}

	q := u.Query()
	q.Set("lon", p.Lng)
	q.Set("lat", p.Lat)
	for _, l := range soilLayers {
		q.Add("property", l.name)
	}
	q.Set("depth", depth)
	q.Set("value", "mean")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NormalizeSoil reduces a SoilGrids response to one scalar per property.
// Each scalar is the first depth's "mean", else its "median", else nil.
// Missing or oddly shaped structures yield nil rather than an error; only
// a body that is not JSON at all fails.
func NormalizeSoil(body []byte) (SoilProperties, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return SoilProperties{}, fmt.Errorf("decode soil response: %w", err)
	}

	out := SoilProperties{Source: SoilSource}

	layers, _ := path(doc, "properties", "layers").([]any)
	byName := make(map[string]any, len(layers))
	for _, l := range layers {
		m, ok := l.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := m["name"].(string); ok {
			if _, seen := byName[name]; !seen {
				byName[name] = m
			}
		}
	}

	for _, l := range soilLayers {
		*l.field(&out) = layerScalar(byName[l.name])
	}
	return out, nil
}

func layerScalar(layer any) *float64 {
	depths, _ := path(layer, "depths").([]any)
	if len(depths) == 0 {
		return nil
	}
	values, ok := path(depths[0], "values").(map[string]any)
	if !ok {
		return nil
	}
	for _, stat := range []string{"mean", "median"} {
		if f, ok := values[stat].(float64); ok {
			return &f
		}
	}
	return nil
}

// path walks nested JSON objects; it returns nil as soon as a step is missing.
func path(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
