package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrUpgradeRequired is matched by every *UpgradeRequiredError.
	ErrUpgradeRequired = errors.New("upgrade required")
	// ErrUnavailable is returned when the subscription service cannot be reached
	// or answers with a server error.
	ErrUnavailable = errors.New("subscription service unavailable")
)

// Reasons lists what the paid tier unlocks. The upgrade prompt shows them as-is.
var Reasons = []string{
	"Import an unlimited number of books",
	"Keep your full highlight history across devices",
	"Export highlights to Markdown and Notion",
	"Support independent development",
}

// UpgradeRequiredError is returned when a free account hits a gated action.
type UpgradeRequiredError struct {
	Limit   int      `json:"limit"`
	Count   int64    `json:"count"`
	Reasons []string `json:"reasons"`
}

func (e *UpgradeRequiredError) Error() string {
	return fmt.Sprintf("free plan allows %d books, %d already imported", e.Limit, e.Count)
}

func (e *UpgradeRequiredError) Is(target error) bool {
	return target == ErrUpgradeRequired
}
