package postgres

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m PaymentModel) (*domain.Payment, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", m.Amount, err)
	}

	return &domain.Payment{
		ID:                   m.ID,
		Reference:            m.PaymentReference,
		Amount:               amount,
		Currency:             m.Currency,
		Status:               domain.PaymentStatus(m.Status),
		Method:               domain.PaymentMethod(m.PaymentMethod),
		GatewayProvider:      m.GatewayProvider,
		GatewayTransactionID: m.GatewayTransactionID,
		CustomerID:           m.CustomerID,
		MerchantID:           m.MerchantID,
		Description:          m.Description,
		FailureReason:        m.FailureReason,
		RedirectURL:          m.RedirectURL,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
		CompletedAt:          utcPtr(m.CompletedAt),
		Version:              m.Version,
	}, nil
}

// toDBModel: maps domain entity to db model
func toDBModel(p *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                   p.ID,
		PaymentReference:     p.Reference,
		Amount:               p.Amount.String(),
		Currency:             p.Currency,
		Status:               string(p.Status),
		PaymentMethod:        string(p.Method),
		GatewayProvider:      p.GatewayProvider,
		GatewayTransactionID: p.GatewayTransactionID,
		CustomerID:           p.CustomerID,
		MerchantID:           p.MerchantID,
		Description:          p.Description,
		FailureReason:        p.FailureReason,
		RedirectURL:          p.RedirectURL,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		CompletedAt:          p.CompletedAt,
		Version:              p.Version,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
