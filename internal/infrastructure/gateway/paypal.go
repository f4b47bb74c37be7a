package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/config"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// tokenLeeway refreshes the access token slightly before PayPal expires it.
const tokenLeeway = 30 * time.Second

// codeAuthFailed marks a failed OAuth token request, as opposed to a failure
// of the call the token was fetched for.
const codeAuthFailed = "authentication_failed"

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	Amount      paypalAmount `json:"amount"`
	Description string       `json:"description,omitempty"`
	CustomID    string       `json:"custom_id,omitempty"`
}

type paypalApplicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type paypalOrderRequest struct {
	Intent             string                   `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnit     `json:"purchase_units"`
	ApplicationContext paypalApplicationContext `json:"application_context"`
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalCapture struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalOrderUnit struct {
	Payments struct {
		Captures []paypalCapture `json:"captures"`
	} `json:"payments"`
}

type paypalOrder struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	Links         []paypalLink      `json:"links"`
	PurchaseUnits []paypalOrderUnit `json:"purchase_units"`
}

type paypalRefundRequest struct {
	Amount      paypalAmount `json:"amount"`
	NoteToPayer string       `json:"note_to_payer,omitempty"`
}

type paypalRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	// OAuth failures use a different envelope.
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// PayPalProcessor creates PayPal Orders with intent CAPTURE. Orders start out
// waiting for payer approval, so new payments are normally PENDING.
type PayPalProcessor struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limits       Limits
	logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func NewPayPalProcessor(cfg config.PayPalConfig, logger *slog.Logger) *PayPalProcessor {
	return &PayPalProcessor{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limits: PayPalLimits,
		logger: logger,
		now:    time.Now,
	}
}

func (p *PayPalProcessor) Name() string {
	return ProviderPayPal
}

func (p *PayPalProcessor) Supports(method domain.PaymentMethod) bool {
	return method == domain.MethodPayPal
}

func (p *PayPalProcessor) Process(ctx context.Context, req domain.PaymentRequest) (*application.ProcessorResult, error) {
	details, ok := req.Details.(domain.PayPalDetails)
	if !ok {
		return nil, &application.GatewayError{
			Provider: ProviderPayPal,
			Code:     "unsupported_method",
			Message:  fmt.Sprintf("cannot settle %s payments", req.Method),
		}
	}

	if reason := p.limits.Check(req); reason != "" {
		return &application.ProcessorResult{Status: domain.StatusFailed, FailureReason: reason}, nil
	}

	money, err := domain.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	body := paypalOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []paypalPurchaseUnit{{
			ReferenceID: req.Reference,
			Amount: paypalAmount{
				CurrencyCode: money.Currency,
				Value:        money.Format(),
			},
			Description: req.Description,
			CustomID:    req.CustomerID,
		}},
		ApplicationContext: paypalApplicationContext{
			ReturnURL: details.ReturnURL,
			CancelURL: details.CancelURL,
		},
	}

	endpoint := fmt.Sprintf("%s/v2/checkout/orders", p.baseURL)
	order, err := sendRequest[paypalOrderRequest, paypalOrder](p, ctx, http.MethodPost, endpoint, &body, req.Reference)
	if err != nil {
		if gwErr, ok := application.IsGatewayError(err); ok && isDecline(gwErr) {
			return &application.ProcessorResult{
				Status:        domain.StatusFailed,
				FailureReason: gwErr.Message,
			}, nil
		}
		return nil, err
	}

	p.logger.Debug("paypal order created",
		"order_id", order.ID,
		"status", order.Status,
		"reference", req.Reference,
	)

	result := orderResult(order)
	if result.Status != domain.StatusFailed && result.Status != domain.StatusCancelled {
		result.Fee = EstimateFee(req.Amount)
	}
	return result, nil
}

func (p *PayPalProcessor) Status(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	endpoint := fmt.Sprintf("%s/v2/checkout/orders/%s", p.baseURL, url.PathEscape(transactionID))
	order, err := sendRequest[any, paypalOrder](p, ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

// Capture collects an order the payer has approved.
func (p *PayPalProcessor) Capture(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	endpoint := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", p.baseURL, url.PathEscape(transactionID))
	order, err := sendRequest[struct{}, paypalOrder](p, ctx, http.MethodPost, endpoint, &struct{}{}, "capture-"+transactionID)
	if err != nil {
		return nil, err
	}

	result := orderResult(order)
	if capture, ok := firstCapture(order); ok {
		switch capture.Status {
		case "PENDING":
			result.Status = domain.StatusPending
		case "DECLINED", "FAILED":
			result.Status = domain.StatusFailed
			result.FailureReason = "paypal capture " + strings.ToLower(capture.Status)
		}
	}

	p.logger.Debug("paypal order captured",
		"order_id", order.ID,
		"status", order.Status,
	)
	return result, nil
}

// Cancel abandons an order. PayPal has no void for CAPTURE orders; an order
// that is never captured charges nobody and expires, so anything short of
// COMPLETED is reported as cancelled.
func (p *PayPalProcessor) Cancel(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	result, err := p.Status(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if result.Status == domain.StatusCompleted {
		return result, nil
	}
	return &application.ProcessorResult{
		TransactionID: transactionID,
		Status:        domain.StatusCancelled,
	}, nil
}

// Refund returns the full captured amount of an order.
func (p *PayPalProcessor) Refund(ctx context.Context, transactionID string, amount domain.Money, reason string) (*application.ProcessorResult, error) {
	endpoint := fmt.Sprintf("%s/v2/checkout/orders/%s", p.baseURL, url.PathEscape(transactionID))
	order, err := sendRequest[any, paypalOrder](p, ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	capture, ok := firstCapture(order)
	if !ok || capture.Status != "COMPLETED" {
		return nil, &application.GatewayError{
			Provider: ProviderPayPal,
			Code:     "capture_not_found",
			Message:  fmt.Sprintf("order %s has no completed capture", transactionID),
		}
	}

	body := paypalRefundRequest{
		Amount: paypalAmount{
			CurrencyCode: domain.NormalizeCurrency(amount.Currency),
			Value:        amount.Format(),
		},
		NoteToPayer: reason,
	}
	endpoint = fmt.Sprintf("%s/v2/payments/captures/%s/refund", p.baseURL, url.PathEscape(capture.ID))
	refund, err := sendRequest[paypalRefundRequest, paypalRefund](p, ctx, http.MethodPost, endpoint, &body, "refund-"+capture.ID)
	if err != nil {
		return nil, err
	}

	result := &application.ProcessorResult{TransactionID: refund.ID}
	switch refund.Status {
	case "COMPLETED", "PENDING":
		result.Status = domain.StatusRefunded
	default:
		result.Status = domain.StatusFailed
		result.FailureReason = "paypal refund " + strings.ToLower(refund.Status)
	}
	return result, nil
}

func orderResult(order *paypalOrder) *application.ProcessorResult {
	result := &application.ProcessorResult{
		TransactionID: order.ID,
		Status:        mapOrderStatus(order.Status),
		RedirectURL:   approveLink(order),
		Capturable:    order.Status == "APPROVED",
	}
	if result.Status == domain.StatusFailed || result.Status == domain.StatusCancelled {
		result.FailureReason = "paypal order " + strings.ToLower(order.Status)
	}
	return result
}

// approveLink finds where the payer approves the order. Orders created with
// a payment source carry payer-action instead of approve.
func approveLink(order *paypalOrder) string {
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}

func firstCapture(order *paypalOrder) (paypalCapture, bool) {
	for _, unit := range order.PurchaseUnits {
		if len(unit.Payments.Captures) > 0 {
			return unit.Payments.Captures[0], true
		}
	}
	return paypalCapture{}, false
}

func mapOrderStatus(status string) domain.PaymentStatus {
	switch status {
	case "COMPLETED":
		return domain.StatusCompleted
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		return domain.StatusPending
	case "VOIDED":
		return domain.StatusCancelled
	default:
		return domain.StatusFailed
	}
}

// isDecline reports whether PayPal refused the order itself. A rejected
// token request is a configuration problem, not a decline.
func isDecline(gwErr *application.GatewayError) bool {
	if gwErr.Code == codeAuthFailed {
		return false
	}
	return gwErr.StatusCode == http.StatusBadRequest || gwErr.StatusCode == http.StatusUnprocessableEntity
}

// token returns a cached OAuth access token, fetching a new one when the
// cached token is missing or about to expire.
func (p *PayPalProcessor) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && p.now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating token request: %w", err)
	}
	httpReq.SetBasicAuth(p.clientID, p.clientSecret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &application.GatewayError{Provider: ProviderPayPal, Code: "network_error", Message: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &application.GatewayError{
			Provider:   ProviderPayPal,
			Code:       codeAuthFailed,
			Message:    "paypal rejected the client credentials",
			StatusCode: resp.StatusCode,
			Err:        decodeError(resp),
		}
	}

	var tok paypalToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("error decoding token response: %w", err)
	}

	p.accessToken = tok.AccessToken
	p.expiresAt = p.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenLeeway)
	return p.accessToken, nil
}

func sendRequest[Req any, Resp any](p *PayPalProcessor, ctx context.Context, method, url string, reqBody *Req, requestID string) (*Resp, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if requestID != "" {
		httpReq.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &application.GatewayError{Provider: ProviderPayPal, Code: "network_error", Message: "request to paypal failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var out Resp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &out, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp paypalErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &application.GatewayError{
			Provider:   ProviderPayPal,
			Code:       "unexpected_response",
			Message:    string(body),
			StatusCode: resp.StatusCode,
		}
	}

	code, message := errResp.Name, errResp.Message
	if code == "" {
		code, message = errResp.Error, errResp.ErrorDescription
	}
	return &application.GatewayError{
		Provider:   ProviderPayPal,
		Code:       code,
		Message:    message,
		StatusCode: resp.StatusCode,
	}
}
