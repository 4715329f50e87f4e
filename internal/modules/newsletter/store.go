package newsletter

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by Store.Create when the email is already subscribed.
var ErrDuplicate = errors.New("subscriber already exists")

// Subscriber is one newsletter opt-in. Email is the normalized identity.
type Subscriber struct {
	ID        string
	Email     string
	Source    string
	CreatedAt time.Time
}

// Store persists subscribers. Create must be atomic per email: two
// concurrent calls for the same address yield one success and one ErrDuplicate.
type Store interface {
	// Ready reports whether the store can serve requests. Failures are
	// configuration errors.
	Ready() error
	Create(ctx context.Context, sub Subscriber) error
	// DeleteByEmail removes every record for email and returns how many went.
	DeleteByEmail(ctx context.Context, email string) (int, error)
	// Each walks all subscribers in pages of at most pageSize. Iteration
	// stops at the first error from the store or from fn.
	Each(ctx context.Context, pageSize int, fn func([]Subscriber) error) error
	Count(ctx context.Context) (int64, error)
}
