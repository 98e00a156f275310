// README: Route overrides persisted in a Redis hash, one field per unordered location pair.
package routes

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"fleetdispatch/internal/logger"
	"fleetdispatch/internal/modules/scheduling"
)

const (
	overridesKey = "dispatch:routes"
	fieldSep     = "|"
)

type Store struct {
	redis *redis.Client
	key   string
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis, key: overridesKey}
}

// Load returns the stored overrides in field order. Fields written before
// pair normalisation come first so the normalised field for the same pair wins.
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	fields, err := s.redis.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := isCanonical(names[i]), isCanonical(names[j])
		if ci != cj {
			return cj
		}
		return names[i] < names[j]
	})

	out := make([]Entry, 0, len(fields))
	for _, field := range names {
		e, ok := decodeEntry(field, fields[field])
		if !ok {
			logger.Warn("skipping malformed route override", "field", field, "value", fields[field])
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, e Entry) error {
	return s.redis.HSet(ctx, s.key, encodeField(e), e.Minutes).Err()
}

// encodeField keys a route by its unordered, normalised pair so both
// directions share one field.
func encodeField(e Entry) string {
	k := scheduling.NewRouteKey(e.Origin, e.Destination)
	return k.A + fieldSep + k.B
}

func isCanonical(field string) bool {
	origin, destination, ok := strings.Cut(field, fieldSep)
	return ok && encodeField(Entry{Origin: origin, Destination: destination}) == field
}

func decodeEntry(field, val string) (Entry, bool) {
	origin, destination, ok := strings.Cut(field, fieldSep)
	if !ok {
		return Entry{}, false
	}
	minutes, err := strconv.Atoi(val)
	if err != nil {
		return Entry{}, false
	}
	e := Entry{Origin: origin, Destination: destination, Minutes: minutes}
	if e.Validate() != nil {
		return Entry{}, false
	}
	return e, true
}
