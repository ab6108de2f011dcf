package subscription

import (
	"context"
	"fmt"
)

// StatusChecker reports whether an account has a paid subscription.
type StatusChecker interface {
	GetStatus(ctx context.Context, email string) (*Status, error)
}

// BookCounter reports how many books an account has imported.
type BookCounter interface {
	CountBooks(email string) (int64, error)
}

// Gate decides whether an account may add another book to its history.
// Re-importing a book already in the history is never gated; callers only
// ask about new titles.
type Gate struct {
	status    StatusChecker
	books     BookCounter
	freeLimit int
}

// NewGate creates a gate. A nil status checker means no paid tier exists, so
// every account is held to the free limit. A limit of zero or less disables
// gating entirely.
func NewGate(status StatusChecker, books BookCounter, freeLimit int) *Gate {
	return &Gate{
		status:    status,
		books:     books,
		freeLimit: freeLimit,
	}
}

// AllowNewBook returns nil when the account may import another title, and an
// *UpgradeRequiredError when it has used up the free tier.
func (g *Gate) AllowNewBook(ctx context.Context, email string) error {
	if g.freeLimit <= 0 {
		return nil
	}

	count, err := g.books.CountBooks(email)
	if err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if count < int64(g.freeLimit) {
		return nil
	}

	if g.status != nil {
		status, err := g.status.GetStatus(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if status.Active {
			return nil
		}
	}

	return &UpgradeRequiredError{
		Limit:   g.freeLimit,
		Count:   count,
		Reasons: Reasons,
	}
}
