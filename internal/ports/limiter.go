package ports

import (
	"context"
	"time"
)

// Admitter decides whether a request from an identity may proceed at a
// given instant. Implementations must be safe for concurrent use.
//
// A rejected request must not count against the identity's quota.
type Admitter interface {
	Admit(ctx context.Context, identity string, now time.Time) (bool, error)
}
