package handlers

import (
	"net/http"

	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := bindPaymentID(w, r)
	if !ok {
		return
	}

	req, err := rest.DecodePaymentActionRequest(r.Body)
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, err.Error(), r.URL.Path))
		return
	}

	payment, err := h.canceller.Cancel(r.Context(), paymentID, req.Reason)
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

func (h *Handlers) RefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := bindPaymentID(w, r)
	if !ok {
		return
	}

	req, err := rest.DecodePaymentActionRequest(r.Body)
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, err.Error(), r.URL.Path))
		return
	}

	payment, err := h.refunder.Refund(r.Context(), paymentID, req.Reason)
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// bindPaymentID reads the {id} path parameter, writing a 400 when it is not a
// UUID.
func bindPaymentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var paymentID string
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &paymentID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err == nil {
		_, err = uuid.Parse(paymentID)
	}
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, "Invalid format for parameter id", r.URL.Path))
		return "", false
	}
	return paymentID, true
}
