package httpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"agrigeo/internal/config"
	"agrigeo/internal/geodata"
	appcache "agrigeo/pkg/cache"
)

// Stores holds the entry stores for the two geodata caches.
type Stores struct {
	Soil       geodata.Store
	Facilities geodata.Store
}

// SetupStores builds memory or Redis stores from the cache config.
// Returns cleanup function (no-op for memory).
func SetupStores(ctx context.Context, cfg config.Cache) (Stores, func(), error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		log.Printf("[agrigeo][cache] driver=memory max_entries=%d per cache", cfg.MaxEntries)
		return Stores{
			Soil:       appcache.NewMemory(cfg.MaxEntries),
			Facilities: appcache.NewMemory(cfg.MaxEntries),
		}, func() {}, nil
	case "redis":
	default:
		return Stores{}, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	r, err := appcache.Init(ctx, appcache.Config{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Pass,
		DB:       cfg.Db,
		Prefix:   cfg.Prefix,
	})
	if err != nil {
		return Stores{}, nil, fmt.Errorf("init redis cache: %w", err)
	}
	log.Printf("[agrigeo][cache] driver=redis addr=%s:%d db=%d prefix=%s", cfg.Host, cfg.Port, cfg.Db, cfg.Prefix)

	return Stores{
		Soil:       r.NewStore("soil"),
		Facilities: r.NewStore("facilities"),
	}, func() { _ = r.Close() }, nil
}

// NewService wires the geodata service from config and the chosen stores.
func NewService(cfg *config.Config, stores Stores, client *http.Client) *geodata.Service {
	return geodata.NewService(geodata.Options{
		SoilStore: stores.Soil,
		SoilTTL:   cfg.Soil.CacheTTL(),
		SoilFetcher: &geodata.SoilClient{
			BaseURL: cfg.Soil.URL,
			Depth:   cfg.Soil.Depth,
			Timeout: cfg.Soil.RequestTimeout(),
			HTTP:    client,
		},
		FacilitiesStore: stores.Facilities,
		FacilitiesTTL:   cfg.Facilities.CacheTTL(),
		FacilitiesFetcher: &geodata.FacilitiesClient{
			BaseURL: cfg.Facilities.URL,
			Limit:   cfg.Facilities.Limit,
			Timeout: cfg.Facilities.RequestTimeout(),
			HTTP:    client,
		},
		DefaultRadiusKm: cfg.Facilities.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Facilities.MaxRadiusKm,
	})
}
