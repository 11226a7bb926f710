package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const captainGeoKey = "captains:geo"

// InitRedis initializes the Redis client. Redis is optional: when REDIS_URL
// is unset the matcher falls back to the in-process haversine scan and
// presence lookups are served from the in-memory registry alone.
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SetConnIDCache mirrors a party's live-connection id to Redis.
func SetConnIDCache(ctx context.Context, partyType string, partyID uint, connID string) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("presence:%s:%d", partyType, partyID)
	if connID == "" {
		return RedisClient.Del(ctx, key).Err()
	}
	return RedisClient.Set(ctx, key, connID, time.Hour).Err()
}

// GeoAddCaptain indexes a captain's location for radius queries.
func GeoAddCaptain(ctx context.Context, captainID uint, lat, lng float64) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.GeoAdd(ctx, captainGeoKey, &redis.GeoLocation{
		Name:      strconv.FormatUint(uint64(captainID), 10),
		Latitude:  lat,
		Longitude: lng,
	}).Err()
}

// GeoRemoveCaptain drops a captain from the radius index, typically on
// disconnect.
func GeoRemoveCaptain(ctx context.Context, captainID uint) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.ZRem(ctx, captainGeoKey, strconv.FormatUint(uint64(captainID), 10)).Err()
}

// RedisGeoIndex answers "captains within radius" via GEOSEARCH. It satisfies
// the matcher's GeoIndex and exists so the haversine scan is only the
// fallback path.
type RedisGeoIndex struct{}

func (RedisGeoIndex) SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]uint, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not configured")
	}
	res, err := RedisClient.GeoSearch(ctx, captainGeoKey, &redis.GeoSearchQuery{
		Latitude:   lat,
		Longitude:  lng,
		Radius:     radiusKm,
		RadiusUnit: "km",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(res))
	for _, name := range res {
		id, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
