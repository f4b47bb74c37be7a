package postgres

import (
	"time"
)

// PaymentModel mirrors a row of the payments table. Amount travels as text so
// NUMERIC values keep their exact scale.
type PaymentModel struct {
	ID                   string
	PaymentReference     string
	Amount               string
	Currency             string
	Status               string
	PaymentMethod        string
	GatewayProvider      string
	GatewayTransactionID *string
	CustomerID           string
	MerchantID           string
	Description          string
	FailureReason        *string
	RedirectURL          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
	Version              int
}
