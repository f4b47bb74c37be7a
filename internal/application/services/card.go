package services

import (
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// CardService exposes card validation to transports that have no payment to
// attach it to.
type CardService struct {
	now func() time.Time
}

func NewCardService(now func() time.Time) *CardService {
	if now == nil {
		now = time.Now
	}
	return &CardService{now: now}
}

func (s *CardService) Validate(card domain.CardInput) domain.CardValidationResult {
	return domain.ValidateCard(card, s.now())
}

func (s *CardService) Classify(number string) domain.CardType {
	return domain.ClassifyCard(number)
}
