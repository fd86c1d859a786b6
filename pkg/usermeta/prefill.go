package usermeta

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Load reads keys for userID. Missing keys are absent from the result.
// Anonymous users get an empty map and no error.
func Load(ctx context.Context, store Store, userID uuid.UUID, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if store == nil || userID == uuid.Nil {
		return out, nil
	}
	for _, key := range keys {
		value, ok, err := store.Get(ctx, userID, key)
		if err != nil {
			return out, fmt.Errorf("usermeta: load %q: %w", key, err)
		}
		if ok {
			out[key] = value
		}
	}
	return out, nil
}

// Save writes every key of keys present in values. Keys missing from values
// keep their stored value. Anonymous users are skipped.
func Save(ctx context.Context, store Store, userID uuid.UUID, keys []string, values map[string]string) error {
	if store == nil || userID == uuid.Nil {
		return nil
	}
	var errs []error
	for _, key := range keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := store.Set(ctx, userID, key, value); err != nil {
			errs = append(errs, fmt.Errorf("usermeta: save %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Merge overlays stored values under submitted ones: a key already present
// in submitted wins.
func Merge(stored, submitted map[string]string) map[string]string {
	out := make(map[string]string, len(stored)+len(submitted))
	for key, value := range stored {
		out[key] = value
	}
	for key, value := range submitted {
		out[key] = value
	}
	return out
}
