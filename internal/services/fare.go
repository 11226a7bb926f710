package services

import (
	"context"
	"fmt"
	"log"

	"github.com/rideway/rideway-backend/internal/models"
	"github.com/rideway/rideway-backend/internal/observability"
	"github.com/rideway/rideway-backend/pkg/utils"
)

const fallbackSpeedKmh = 40

// RouteProvider is the external distance/duration and geocoding lookup.
// Both calls may fail or be rate-limited; the estimator absorbs that.
type RouteProvider interface {
	AddressToCoordinates(ctx context.Context, address string) (float64, float64, error)
	DistanceAndDuration(ctx context.Context, origin, destination utils.Location) (float64, float64, error)
}

// FareEstimator produces per-vehicle-class quotes. The routing provider is
// the primary path; on any provider failure the estimate is recomputed from
// straight-line distance and an assumed average speed, so a provider outage
// never surfaces to the caller.
type FareEstimator struct {
	Routes RouteProvider // nil when no provider is configured
}

// Estimate returns integer fares for every vehicle class. It only errors when
// an endpoint is missing or cannot be resolved to coordinates at all.
func (e *FareEstimator) Estimate(ctx context.Context, pickup, destination utils.Location) (models.FareEstimate, error) {
	if pickup.Raw == "" || destination.Raw == "" {
		return models.FareEstimate{}, models.ErrMissingFields
	}

	distanceKm, durationMin, err := e.distanceAndDuration(ctx, pickup, destination)
	if err != nil {
		return models.FareEstimate{}, err
	}

	return models.FareEstimate{
		Auto: utils.ComputeFare(utils.AutoRates, distanceKm, durationMin),
		Car:  utils.ComputeFare(utils.CarRates, distanceKm, durationMin),
		Moto: utils.ComputeFare(utils.MotoRates, distanceKm, durationMin),
	}, nil
}

func (e *FareEstimator) distanceAndDuration(ctx context.Context, pickup, destination utils.Location) (float64, float64, error) {
	if e.Routes != nil {
		meters, seconds, err := e.Routes.DistanceAndDuration(ctx, pickup, destination)
		if err == nil && meters > 0 && seconds > 0 {
			return meters / 1000, seconds / 60, nil
		}
		if err != nil {
			log.Printf("fare: routing lookup failed, using haversine fallback: %v", err)
		}
	}

	observability.FareFallbackTotal.Inc()

	pLat, pLng, err := e.resolveCoords(ctx, pickup)
	if err != nil {
		return 0, 0, err
	}
	dLat, dLng, err := e.resolveCoords(ctx, destination)
	if err != nil {
		return 0, 0, err
	}

	distanceKm := utils.HaversineDistance(pLat, pLng, dLat, dLng)
	return distanceKm, utils.EstimateDurationMinutes(distanceKm, fallbackSpeedKmh), nil
}

func (e *FareEstimator) resolveCoords(ctx context.Context, loc utils.Location) (float64, float64, error) {
	if loc.HasCoords {
		return loc.Lat, loc.Lng, nil
	}
	if e.Routes == nil {
		return 0, 0, fmt.Errorf("%w: cannot resolve %q", models.ErrRoutingUnavailable, loc.Raw)
	}
	lat, lng, err := e.Routes.AddressToCoordinates(ctx, loc.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", models.ErrRoutingUnavailable, err)
	}
	return lat, lng, nil
}
