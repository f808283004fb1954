package slug

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
)

// maxCounterAttempts bounds the sequential "-1", "-2", ... suffix search
// before falling back to a random suffix.
const maxCounterAttempts = 100

// randomSuffixLength is the number of hex characters appended in the
// random fallback.
const randomSuffixLength = 8

// ErrSlugExhausted is returned when no unique slug could be found even
// after the random-suffix fallback.
var ErrSlugExhausted = domainerrors.Conflict("could not generate a unique slug")

// ExistsFunc reports whether a slug is already taken. excludeID, when
// non-empty, names a row whose own slug does not count as a collision
// (so renames can keep their slug).
type ExistsFunc func(ctx context.Context, slug, excludeID string) (bool, error)

// ResolveUnique finds a unique variant of base.
//
// Resolution order:
//  1. base itself
//  2. base-1 through base-100
//  3. base-<8 random hex chars>, tried twice
//
// The final failure is ErrSlugExhausted; with 4 billion random suffixes it
// signals a broken exists predicate rather than genuine exhaustion.
func ResolveUnique(ctx context.Context, base string, exists ExistsFunc, excludeID string) (string, error) {
	if base == "" {
		return "", domainerrors.Validation("slug base is empty")
	}

	taken, err := exists(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxCounterAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	// Counter space exhausted: one random suffix, retried once.
	for attempt := 0; attempt < 2; attempt++ {
		candidate := base + "-" + randomSuffix()
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrSlugExhausted
}

// randomSuffix returns 8 hex characters of randomness.
func randomSuffix() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:randomSuffixLength/2])
}
