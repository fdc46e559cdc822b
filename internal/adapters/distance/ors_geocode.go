package distance

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// normalize collapses whitespace so equivalent addresses share a cache key.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves an address. "lat,lng" input is parsed without a lookup;
// anything else goes through the geocode cache and then /geocode/search.
func (o *ORSDistanceProvider) Geocode(ctx context.Context, address string) (_ domain.Location, err error) {
	if loc, ok := domain.ParseLocation(address); ok {
		return loc, nil
	}

	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Location{}, fmt.Errorf("geocode: %w: empty address", ports.ErrInvalidInput)
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("req_id=%s op=ors.geocode.cache.get err=%v", obs.RequestID(ctx), err)
		} else if loc, ok := hits[norm]; ok {
			return loc, nil
		}
	}

	loc, err := o.geocodeSearch(ctx, norm)
	if err != nil {
		return domain.Location{}, err
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Location{norm: loc}); err != nil {
			log.Printf("req_id=%s op=ors.geocode.cache.put err=%v", obs.RequestID(ctx), err)
		}
	}
	return loc, nil
}

func (o *ORSDistanceProvider) geocodeSearch(ctx context.Context, text string) (domain.Location, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", "1")
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", text, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Location{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Location{}, fmt.Errorf("geocode: %w: no results for %q", ports.ErrNotFound, text)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Location{}, fmt.Errorf("invalid coordinate format for %q", text)
	}

	return domain.Location{Lat: coords[1], Lng: coords[0]}, nil
}
