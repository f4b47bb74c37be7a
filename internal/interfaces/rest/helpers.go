package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
)

// DecodeError reports a request body that could not be read as JSON of the
// expected shape.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type CardValidationRequest struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardHolderName string `json:"cardHolderName"`
}

func (c CardValidationRequest) ToCardInput() domain.CardInput {
	return domain.CardInput{
		Number:      c.CardNumber,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CVV:         c.CVV,
		HolderName:  c.CardHolderName,
	}
}

type CardValidationResponse struct {
	IsValid          bool   `json:"isValid"`
	CardType         string `json:"cardType"`
	MaskedCardNumber string `json:"maskedCardNumber"`
	Message          string `json:"message"`
	IsExpired        bool   `json:"isExpired"`
	DaysUntilExpiry  int    `json:"daysUntilExpiry"`
}

func ToCardValidationResponse(r domain.CardValidationResult) CardValidationResponse {
	return CardValidationResponse{
		IsValid:          r.Valid,
		CardType:         string(r.Type),
		MaskedCardNumber: r.MaskedNumber,
		Message:          r.Message,
		IsExpired:        r.Expired,
		DaysUntilExpiry:  r.DaysUntilExpiry,
	}
}

type PaymentRequestDTO struct {
	PaymentReference string          `json:"paymentReference"`
	Amount           json.Number     `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"paymentMethod"`
	CustomerID       string          `json:"customerId"`
	MerchantID       string          `json:"merchantId"`
	Description      string          `json:"description"`
	PaymentDetails   json.RawMessage `json:"paymentDetails"`
}

// paymentDetailsDTO is the union of every details variant, keyed by Type.
type paymentDetailsDTO struct {
	Type string `json:"type"`
	CardValidationRequest
	Email     string `json:"email"`
	ReturnURL string `json:"returnUrl"`
	CancelURL string `json:"cancelUrl"`
}

type PaymentResponse struct {
	ID                   string      `json:"id"`
	PaymentReference     string      `json:"paymentReference"`
	Amount               json.Number `json:"amount"`
	Currency             string      `json:"currency"`
	Status               string      `json:"status"`
	PaymentMethod        string      `json:"paymentMethod"`
	GatewayProvider      string      `json:"gatewayProvider"`
	GatewayTransactionID *string     `json:"gatewayTransactionId"`
	CustomerID           string      `json:"customerId"`
	MerchantID           string      `json:"merchantId"`
	Description          string      `json:"description"`
	FailureReason        *string     `json:"failureReason"`
	RedirectURL          *string     `json:"redirectUrl"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
	CompletedAt          *time.Time  `json:"completedAt"`
	Version              int         `json:"version"`
	Completed            bool        `json:"completed"`
	Failed               bool        `json:"failed"`
	Pending              bool        `json:"pending"`
}

// DecodePaymentRequest reads a payment request body. Shape problems come back
// as *DecodeError; an unknown details type is a *domain.ValidationError.
func DecodePaymentRequest(body io.Reader) (domain.PaymentRequest, error) {
	var dto PaymentRequestDTO
	if err := decodeJSON(body, &dto); err != nil {
		return domain.PaymentRequest{}, err
	}
	return dto.ToPaymentRequest()
}

// PaymentActionRequest is the optional body of a cancel or refund call.
type PaymentActionRequest struct {
	Reason string `json:"reason"`
}

// DecodePaymentActionRequest reads a cancel or refund body. An empty body is
// an empty request.
func DecodePaymentActionRequest(body io.Reader) (PaymentActionRequest, error) {
	var req PaymentActionRequest
	if body == nil || body == http.NoBody {
		return req, nil
	}
	if err := decodeJSON(body, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// DecodeCardValidationRequest reads a card validation body.
func DecodeCardValidationRequest(body io.Reader) (CardValidationRequest, error) {
	var req CardValidationRequest
	err := decodeJSON(body, &req)
	return req, err
}

func (d PaymentRequestDTO) ToPaymentRequest() (domain.PaymentRequest, error) {
	amount := decimal.Zero
	if d.Amount != "" {
		parsed, err := decimal.NewFromString(d.Amount.String())
		if err != nil {
			return domain.PaymentRequest{}, &DecodeError{Message: "Invalid value for field 'amount': " + d.Amount.String(), Err: err}
		}
		amount = parsed
	}

	method := domain.PaymentMethod(strings.TrimSpace(d.PaymentMethod))
	details, err := toPaymentDetails(d.PaymentDetails)
	if err != nil {
		return domain.PaymentRequest{}, err
	}

	return domain.PaymentRequest{
		Reference:   strings.TrimSpace(d.PaymentReference),
		Amount:      amount,
		Currency:    domain.NormalizeCurrency(d.Currency),
		Method:      method,
		CustomerID:  strings.TrimSpace(d.CustomerID),
		MerchantID:  strings.TrimSpace(d.MerchantID),
		Description: d.Description,
		Details:     details,
	}, nil
}

func toPaymentDetails(raw json.RawMessage) (domain.PaymentDetails, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var dto paymentDetailsDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, decodeError(err)
	}

	switch kind := domain.PaymentMethod(strings.TrimSpace(dto.Type)); kind {
	case domain.MethodCreditCard, domain.MethodDebitCard:
		return domain.CardDetails{Kind: kind, Card: dto.ToCardInput()}, nil
	case domain.MethodPayPal:
		return domain.PayPalDetails{
			Email:     strings.TrimSpace(dto.Email),
			ReturnURL: strings.TrimSpace(dto.ReturnURL),
			CancelURL: strings.TrimSpace(dto.CancelURL),
		}, nil
	case "":
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "paymentDetails.type",
			Message: "paymentDetails.type is required",
		})
	default:
		return nil, domain.NewValidationError(domain.FieldError{
			Field:   "paymentDetails.type",
			Message: fmt.Sprintf("payment details type %s is not supported", kind),
		})
	}
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		PaymentReference:     p.Reference,
		Amount:               json.Number(p.Amount.String()),
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
		Completed:            p.Status == domain.StatusCompleted,
		Failed:               p.Status == domain.StatusFailed,
		Pending:              p.Status == domain.StatusPending || p.Status == domain.StatusProcessing,
	}
}

func ToPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

func decodeJSON(body io.Reader, dst any) error {
	if body == nil {
		return &DecodeError{Message: "Request body is required"}
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &DecodeError{Message: "Request body is required", Err: err}
		}
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) *DecodeError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &DecodeError{Message: fmt.Sprintf("Invalid input for field '%s'", typeErr.Field), Err: err}
	}
	return &DecodeError{Message: "Invalid request format", Err: err}
}
