package handlers

import (
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
	"github.com/oapi-codegen/runtime"
)

func (h *Handlers) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := bindPaymentID(w, r)
	if !ok {
		return
	}

	payment, err := h.query.FindByID(r.Context(), paymentID)
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

func (h *Handlers) GetPaymentByReference(w http.ResponseWriter, r *http.Request) {
	var reference string
	err := runtime.BindStyledParameterWithOptions("simple", "reference", r.PathValue("reference"), &reference, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, "Invalid format for parameter reference", r.URL.Path))
		return
	}

	payment, err := h.query.FindByReference(r.Context(), reference)
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// ListPaymentsParams are the query parameters of GET /api/v1/payments.
// Exactly one of CustomerID, MerchantID, or Status selects the listing.
type ListPaymentsParams struct {
	CustomerID *string
	MerchantID *string
	Status     *string
	Limit      *int
	Offset     *int
}

// ListPayments lists one customer's, one merchant's, or one status's
// payments, newest first.
func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, err.Error(), r.URL.Path))
		return
	}

	limit, offset := deref(params.Limit), deref(params.Offset)

	var payments []*domain.Payment
	switch {
	case params.CustomerID != nil:
		payments, err = h.query.FindByCustomerID(r.Context(), *params.CustomerID, limit, offset)
	case params.MerchantID != nil:
		payments, err = h.query.FindByMerchantID(r.Context(), *params.MerchantID, limit, offset)
	default:
		status, _ := domain.ParsePaymentStatus(strings.ToUpper(*params.Status))
		payments, err = h.query.FindByStatus(r.Context(), status, limit, offset)
	}
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponses(payments))
}

func bindListParams(r *http.Request) (ListPaymentsParams, error) {
	var params ListPaymentsParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "customerId", query, &params.CustomerID); err != nil {
		return params, errInvalidParam("customerId")
	}
	if err := runtime.BindQueryParameter("form", true, false, "merchantId", query, &params.MerchantID); err != nil {
		return params, errInvalidParam("merchantId")
	}
	if err := runtime.BindQueryParameter("form", true, false, "status", query, &params.Status); err != nil {
		return params, errInvalidParam("status")
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return params, errInvalidParam("limit")
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &params.Offset); err != nil {
		return params, errInvalidParam("offset")
	}

	selectors := 0
	for _, s := range []*string{params.CustomerID, params.MerchantID, params.Status} {
		if s != nil {
			selectors++
		}
	}
	if selectors != 1 {
		return params, errSelector
	}
	if params.Status != nil {
		if _, ok := domain.ParsePaymentStatus(strings.ToUpper(*params.Status)); !ok {
			return params, errInvalidParam("status")
		}
	}
	return params, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
