package subscription

import (
	"context"
	"errors"
	"log"
)

// CheckoutStarter opens a hosted checkout session.
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, email string) (string, error)
}

// Offer is what the upgrade prompt renders. Exactly one of CheckoutURL and
// Error is set.
type Offer struct {
	Reasons     []string `json:"reasons"`
	CheckoutURL string   `json:"checkout_url,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Prompt backs the "upgrade" action shown when a gated action is denied.
type Prompt struct {
	checkout CheckoutStarter
}

// NewPrompt creates a prompt. A nil starter yields offers that explain
// upgrades are unavailable.
func NewPrompt(checkout CheckoutStarter) *Prompt {
	return &Prompt{checkout: checkout}
}

// Upgrade starts a checkout for email. Failures come back as a message for
// the user, never as an error, so the calling flow always continues.
func (p *Prompt) Upgrade(ctx context.Context, email string) Offer {
	offer := Offer{Reasons: Reasons}

	if p.checkout == nil {
		offer.Error = "Upgrades are not available right now."
		return offer
	}

	url, err := p.checkout.StartCheckout(ctx, email)
	if err != nil {
		log.Printf("Failed to start checkout for %s: %v", email, err)
		if errors.Is(err, ErrUnavailable) {
			offer.Error = "The payment service could not be reached. Please try again in a few minutes."
		} else {
			offer.Error = "Something went wrong while starting the upgrade. Please try again."
		}
		return offer
	}

	offer.CheckoutURL = url
	return offer
}
