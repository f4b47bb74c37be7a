package handlers

import (
	"net/http"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
)

const paymentHealthMessage = "Payment service is up and running!"

func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	req, err := rest.DecodePaymentRequest(r.Body)
	if err != nil {
		if _, ok := domain.IsValidationError(err); ok {
			rest.WriteError(w, r, err, h.logger)
			return
		}
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, err.Error(), r.URL.Path))
		return
	}

	payment, err := h.intake.Process(r.Context(), req)
	if err != nil {
		rest.WriteError(w, r, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

func (h *Handlers) PaymentHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, paymentHealthMessage)
}
