package geodata

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service owns the soil and facilities caches and their upstream fetchers.
// Build it once at startup and share it between requests.
type Service struct {
	soil            *Cache[SoilProperties]
	soilFetcher     SoilFetcher
	facilities      *Cache[FacilitiesResult]
	facilityFetcher FacilitiesFetcher

	DefaultRadiusKm string
	MaxRadiusKm     float64
}

type Options struct {
	SoilStore         Store
	SoilTTL           time.Duration
	SoilFetcher       SoilFetcher
	FacilitiesStore   Store
	FacilitiesTTL     time.Duration
	FacilitiesFetcher FacilitiesFetcher
	DefaultRadiusKm   string
	MaxRadiusKm       float64
}

func NewService(o Options) *Service {
	if o.DefaultRadiusKm == "" {
		o.DefaultRadiusKm = "3"
	}
	return &Service{
		soil:            NewCache[SoilProperties]("soil", o.SoilStore, o.SoilTTL),
		soilFetcher:     o.SoilFetcher,
		facilities:      NewCache[FacilitiesResult]("facilities", o.FacilitiesStore, o.FacilitiesTTL),
		facilityFetcher: o.FacilitiesFetcher,
		DefaultRadiusKm: o.DefaultRadiusKm,
		MaxRadiusKm:     o.MaxRadiusKm,
	}
}

// ParseFacilitiesQuery applies the service's radius defaults and limits.
func (s *Service) ParseFacilitiesQuery(lat, lng, radiusKm string) (FacilitiesQuery, error) {
	return ParseFacilitiesQuery(lat, lng, radiusKm, s.DefaultRadiusKm, s.MaxRadiusKm)
}

func (s *Service) Soil(ctx context.Context, q SoilQuery) (SoilProperties, error) {
	return s.soil.GetOrFetch(ctx, q.Key(), func(ctx context.Context) (SoilProperties, error) {
		return s.soilFetcher.FetchSoil(ctx, q.Point)
	})
}

func (s *Service) Facilities(ctx context.Context, q FacilitiesQuery) (FacilitiesResult, error) {
	return s.facilities.GetOrFetch(ctx, q.Key(), func(ctx context.Context) (FacilitiesResult, error) {
		return s.facilityFetcher.FetchFacilities(ctx, q)
	})
}

// Site resolves soil and facilities for the same point concurrently.
// The first failure is returned.
func (s *Service) Site(ctx context.Context, q FacilitiesQuery) (Site, error) {
	var site Site
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		soil, err := s.Soil(gctx, SoilQuery{Point: q.Point})
		if err != nil {
			return err
		}
		site.Soil = soil
		return nil
	})
	g.Go(func() error {
		res, err := s.Facilities(gctx, q)
		if err != nil {
			return err
		}
		site.Facilities = res.Facilities
		return nil
	})

	if err := g.Wait(); err != nil {
		return Site{}, err
	}
	if site.Facilities == nil {
		site.Facilities = []Facility{}
	}
	return site, nil
}

func (s *Service) Stats() []CacheStats {
	return []CacheStats{s.soil.Stats(), s.facilities.Stats()}
}
