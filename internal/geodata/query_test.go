package geodata

import (
	"errors"
	"testing"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lng     string
		wantErr error
	}{
		{"valid", "52.37", "4.89", nil},
		{"trimmed", " 52.37 ", "4.89\t", nil},
		{"edges", "-90", "180", nil},
		{"missing lat", "", "4.89", ErrMissingCoordinates},
		{"missing lng", "52.37", "", ErrMissingCoordinates},
		{"blank lat", "   ", "4.89", ErrMissingCoordinates},
		{"not a number", "abc", "4.89", ErrInvalidCoordinates},
		{"nan", "NaN", "4.89", ErrInvalidCoordinates},
		{"lat out of range", "91", "4.89", ErrInvalidCoordinates},
		{"lng out of range", "52.37", "-180.5", ErrInvalidCoordinates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePoint(tt.lat, tt.lng)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePoint(%q,%q) err=%v want %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestParsePoint_KeepsOriginalSpelling(t *testing.T) {
	p, err := ParsePoint(" 52.370 ", "4.8900")
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	if p.Lat != "52.370" || p.Lng != "4.8900" {
		t.Fatalf("got lat=%q lng=%q", p.Lat, p.Lng)
	}
	if o := p.Orb(); o.Lat() != 52.37 || o.Lon() != 4.89 {
		t.Fatalf("orb point=%v", o)
	}
}

func TestQueryKeys(t *testing.T) {
	a, _ := ParseSoilQuery("52.37", "4.89")
	b, _ := ParseSoilQuery("52.370", "4.89")
	if a.Key() != "52.37,4.89" {
		t.Fatalf("soil key=%q", a.Key())
	}
	if a.Key() == b.Key() {
		t.Fatalf("different spellings share a key: %q", a.Key())
	}

	f, err := ParseFacilitiesQuery("52.37", "4.89", "", "3", 50)
	if err != nil {
		t.Fatalf("ParseFacilitiesQuery: %v", err)
	}
	if f.Key() != "52.37,4.89,3" {
		t.Fatalf("facilities key=%q", f.Key())
	}
	if f.RadiusMeters() != 3000 {
		t.Fatalf("radius meters=%v", f.RadiusMeters())
	}
}

func TestParseFacilitiesQuery_Radius(t *testing.T) {
	tests := []struct {
		radius  string
		wantErr error
	}{
		{"1.5", nil},
		{"50", nil},
		{"0", ErrInvalidRadius},
		{"-2", ErrInvalidRadius},
		{"wide", ErrInvalidRadius},
		{"51", ErrInvalidRadius},
	}
	for _, tt := range tests {
		_, err := ParseFacilitiesQuery("1", "2", tt.radius, "3", 50)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("radius %q err=%v want %v", tt.radius, err, tt.wantErr)
		}
	}

	// missing coordinates win over a bad radius
	if _, err := ParseFacilitiesQuery("1", "", "bad", "3", 50); !errors.Is(err, ErrMissingCoordinates) {
		t.Fatalf("err=%v want ErrMissingCoordinates", err)
	}
}
