package geodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const overpassSample = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 101, "lat": 52.1, "lon": 5.1, "tags": {"name": "Co-op Market", "amenity": "marketplace"}},
    {"type": "node", "id": 102, "lon": 5.2, "tags": {"name": "No latitude", "shop": "farm"}},
    {"type": "way", "id": 9000000001, "center": {"lat": 52.3, "lon": 5.3}, "tags": {"shop": "agrarian"}},
    {"type": "node", "id": 104, "lat": 52.4, "lon": 5.4, "tags": {"name": "Untyped"}},
    {"type": "node", "id": 105, "lat": 52.5, "lon": 5.5}
  ]
}`

func TestNormalizeFacilities(t *testing.T) {
	got, err := NormalizeFacilities([]byte(overpassSample), 50)
	if err != nil {
		t.Fatalf("NormalizeFacilities: %v", err)
	}

	want := []Facility{
		{ID: "101", Name: "Co-op Market", Type: "marketplace", Lat: 52.1, Lng: 5.1},
		{ID: "9000000001", Name: "Unnamed facility", Type: "agrarian", Lat: 52.3, Lng: 5.3},
		{ID: "104", Name: "Untyped", Type: "facility", Lat: 52.4, Lng: 5.4},
		{ID: "105", Name: "Unnamed facility", Type: "facility", Lat: 52.5, Lng: 5.5},
	}
	if len(got.Facilities) != len(want) {
		t.Fatalf("got %d facilities want %d: %+v", len(got.Facilities), len(want), got.Facilities)
	}
	for i := range want {
		if got.Facilities[i] != want[i] {
			t.Fatalf("facility[%d]=%+v want %+v", i, got.Facilities[i], want[i])
		}
	}
}

func TestNormalizeFacilities_CapsAtLimit(t *testing.T) {
	var els []string
	for i := 0; i < 60; i++ {
		els = append(els, fmt.Sprintf(`{"type":"node","id":%d,"lat":1,"lon":2}`, i))
	}
	// one element without coordinates in front must not count
	body := `{"elements":[{"type":"node","id":999,"lat":1},` + strings.Join(els, ",") + `]}`

	got, err := NormalizeFacilities([]byte(body), 50)
	if err != nil {
		t.Fatalf("NormalizeFacilities: %v", err)
	}
	if len(got.Facilities) != 50 {
		t.Fatalf("len=%d want 50", len(got.Facilities))
	}
	if got.Facilities[0].ID != "0" {
		t.Fatalf("first id=%q want 0", got.Facilities[0].ID)
	}
}

func TestNormalizeFacilities_Empty(t *testing.T) {
	got, err := NormalizeFacilities([]byte(`{"elements":[]}`), 50)
	if err != nil {
		t.Fatalf("NormalizeFacilities: %v", err)
	}
	if got.Facilities == nil || len(got.Facilities) != 0 {
		t.Fatalf("facilities=%#v want empty non-nil", got.Facilities)
	}

	if _, err := NormalizeFacilities([]byte(`not json`), 50); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBuildOverpassQuery(t *testing.T) {
	q, _ := ParseFacilitiesQuery("52.370", "4.89", "2.5", "3", 50)
	got := BuildOverpassQuery(q, 50, 25*time.Second)

	for _, want := range []string{
		"[out:json][timeout:25];",
		`node["amenity"~"marketplace|veterinary|fuel|bank|atm"](around:2500,52.370,4.89);`,
		`way["amenity"~"marketplace|veterinary|fuel|bank|atm"](around:2500,52.370,4.89);`,
		"out center 50;",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("query missing %q:\n%s", want, got)
		}
	}
}

func TestFacilitiesClient_PostsForm(t *testing.T) {
	var gotData, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		gotType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotData = r.PostForm.Get("data")
		w.Write([]byte(overpassSample))
	}))
	t.Cleanup(srv.Close)

	c := &FacilitiesClient{BaseURL: srv.URL, Timeout: time.Second}
	q, _ := ParseFacilitiesQuery("52.1", "5.1", "", "3", 50)

	got, err := c.FetchFacilities(context.Background(), q)
	if err != nil {
		t.Fatalf("FetchFacilities: %v", err)
	}
	if len(got.Facilities) != 4 {
		t.Fatalf("len=%d want 4", len(got.Facilities))
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("content-type=%q", gotType)
	}
	if !strings.Contains(gotData, "(around:3000,52.1,5.1)") {
		t.Fatalf("data=%q", gotData)
	}
}

func TestFacilitiesClient_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := &FacilitiesClient{BaseURL: srv.URL, Timeout: time.Second}
	q, _ := ParseFacilitiesQuery("1", "2", "", "3", 50)

	_, err := c.FetchFacilities(context.Background(), q)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusTooManyRequests || ue.Provider != "facilities" {
		t.Fatalf("err=%v", err)
	}
}
