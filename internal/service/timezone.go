package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const timezoneSystemPrompt = `You map free-text place descriptions to IANA timezone identifiers. Reply with exactly one identifier such as "Europe/Berlin" or "America/New_York" and nothing else. If the place is unrecognizable reply "UTC".`

// TimezoneResolver turns a user's free-text location into a *time.Location.
// The guess comes from the language model and is validated against the IANA
// database; any failure along the way falls back to a fixed zone so local
// time is always defined.
type TimezoneResolver struct {
	llm      LLMClient
	redis    *redis.Client
	fallback *time.Location
}

// NewTimezoneResolver creates a resolver. llm and redisClient may be nil;
// resolution then always yields the fallback zone. An unknown fallback name
// degrades to UTC.
func NewTimezoneResolver(llm LLMClient, redisClient *redis.Client, fallbackZone string) *TimezoneResolver {
	loc, err := time.LoadLocation(fallbackZone)
	if err != nil {
		log.Printf("[TimezoneResolver] unknown fallback zone %q, using UTC", fallbackZone)
		loc = time.UTC
	}
	return &TimezoneResolver{
		llm:      llm,
		redis:    redisClient,
		fallback: loc,
	}
}

func timezoneCacheKey(location string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(location))))
	return fmt.Sprintf("tz:%s", hex.EncodeToString(sum[:12]))
}

// Resolve returns the best-effort zone for the stored location string.
func (r *TimezoneResolver) Resolve(ctx context.Context, location string) *time.Location {
	location = strings.TrimSpace(location)
	if location == "" || r.llm == nil {
		return r.fallback
	}

	cacheKey := timezoneCacheKey(location)
	if r.redis != nil {
		if name, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			if loc, err := time.LoadLocation(name); err == nil {
				return loc
			}
		}
	}

	reply, err := r.llm.Complete(ctx, timezoneSystemPrompt, location, false)
	if err != nil {
		log.Printf("[TimezoneResolver] guess failed for %q: %v", location, err)
		return r.fallback
	}

	name := strings.Trim(strings.TrimSpace(reply), `"`)
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[TimezoneResolver] unrecognized zone %q for %q", name, location)
		return r.fallback
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, cacheKey, name, 30*24*time.Hour).Err(); err != nil {
			log.Printf("[TimezoneResolver] cache write failed: %v", err)
		}
	}
	return loc
}
