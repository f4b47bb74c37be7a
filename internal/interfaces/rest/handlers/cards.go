package handlers

import (
	"net/http"

	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
	"github.com/oapi-codegen/runtime"
)

const cardHealthMessage = "Credit Card validation service is up and running!"

// ValidateCard always answers 200. A body that cannot be decoded is validated
// as an empty card, so the caller gets an invalid result with a reason.
func (h *Handlers) ValidateCard(w http.ResponseWriter, r *http.Request) {
	req, err := rest.DecodeCardValidationRequest(r.Body)
	if err != nil {
		h.logger.Debug("card validation body not decoded", "error", err)
	}

	result := h.cards.Validate(req.ToCardInput())
	rest.WriteJSON(w, http.StatusOK, rest.ToCardValidationResponse(result))
}

func (h *Handlers) CardType(w http.ResponseWriter, r *http.Request) {
	var number string
	err := runtime.BindStyledParameterWithOptions("simple", "number", r.PathValue("number"), &number, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		rest.WriteErrorResponse(w, rest.NewErrorResponse(http.StatusBadRequest, "Invalid format for parameter number", r.URL.Path))
		return
	}

	writeText(w, http.StatusOK, string(h.cards.Classify(number)))
}

func (h *Handlers) CardHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, cardHealthMessage)
}
