package distance

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/metrics"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-car"
)

type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	// Country restricts geocoding results (ISO alpha-2); empty means worldwide.
	Country string
	// RatePerSec caps outgoing requests; <= 0 disables limiting.
	RatePerSec float64
	Timeout    time.Duration
}

// ORSDistanceProvider implements DistanceMatrixProvider and Geocoder on top of
// OpenRouteService.
//
// Matrix rows are cached per origin, geocodes per normalized address. Outgoing
// calls go through a shared rate limiter and are retried with backoff.
// The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	limiter       *rate.Limiter
	backoff       time.Duration
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

func NewORSDistanceProvider(
	cfg ORSConfig,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
) (*ORSDistanceProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultORSBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultORSProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		burst := int(cfg.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}

	return &ORSDistanceProvider{
		session:       &http.Client{Timeout: cfg.Timeout},
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		profile:       cfg.Profile,
		country:       cfg.Country,
		limiter:       limiter,
		backoff:       200 * time.Millisecond,
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}, nil
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	from domain.Location,
	to domain.Location,
) (ports.DistanceResult, error) {
	results, err := o.GetDistances(ctx, from, []domain.Location{to})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get distance %s -> %s: %w", from, to, err)
	}

	r, ok := results[to.Key()]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("no distance result for %s -> %s", from, to)
	}
	return r, nil
}

// GetDistances returns one origin->many row keyed by Location.Key().
// Destinations equal to the origin get a zero result without a lookup.
// Pairs ORS cannot route are absent from the map rather than failing the row.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	if !origin.Valid() {
		return nil, fmt.Errorf("invalid origin %s", origin)
	}

	originKey := origin.Key()
	out := make(map[string]ports.DistanceResult, len(destinations))

	seen := make(map[string]struct{}, len(destinations))
	keys := make([]string, 0, len(destinations))
	locs := make(map[string]domain.Location, len(destinations))
	for _, d := range destinations {
		if !d.Valid() {
			return nil, fmt.Errorf("invalid destination %s", d)
		}
		k := d.Key()
		if k == originKey {
			out[k] = ports.DistanceResult{}
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
		locs[k] = d
	}

	if len(keys) == 0 {
		return out, nil
	}

	hits := map[string]ports.DistanceResult{}
	if o.distanceCache != nil {
		hits, err = o.distanceCache.GetMany(ctx, originKey, keys)
		if err != nil {
			// A broken cache must not block routing.
			log.Printf("req_id=%s op=ors.cache.get err=%v", obs.RequestID(ctx), err)
			hits = map[string]ports.DistanceResult{}
		}
	}

	misses := make([]string, 0, len(keys))
	for _, k := range keys {
		if r, ok := hits[k]; ok {
			out[k] = r
			continue
		}
		misses = append(misses, k)
	}

	if o.distanceCache != nil {
		metrics.DistanceCacheHits.WithLabelValues("hit").Add(float64(len(keys) - len(misses)))
		metrics.DistanceCacheHits.WithLabelValues("miss").Add(float64(len(misses)))
	}

	if len(misses) == 0 {
		return out, nil
	}

	missLocs := make([]domain.Location, 0, len(misses))
	for _, k := range misses {
		missLocs = append(missLocs, locs[k])
	}

	fetched, err := o.fetchMatrixRow(ctx, origin, missLocs)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	missing := make([]string, 0)
	for _, k := range misses {
		if _, ok := fetched[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		log.Printf(
			"req_id=%s op=ors.matrix origin=%s unroutable=%s",
			obs.RequestID(ctx), originKey, strings.Join(missing, "; "),
		)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, originKey, fetched); err != nil {
			log.Printf("req_id=%s op=ors.cache.put err=%v", obs.RequestID(ctx), err)
		}
	}

	for k, v := range fetched {
		out[k] = v
	}
	return out, nil
}
