package gateway

import (
	"fmt"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

const (
	ProviderStripe    = "stripe"
	ProviderPayPal    = "paypal"
	ProviderSimulated = "simulated"
)

// preferred maps each method to the processor that normally settles it.
var preferred = map[domain.PaymentMethod]string{
	domain.MethodCreditCard: ProviderStripe,
	domain.MethodDebitCard:  ProviderStripe,
	domain.MethodPayPal:     ProviderPayPal,
}

// Router resolves processors by payment method. Registration order breaks ties
// when the preferred processor is not registered.
type Router struct {
	processors []application.Processor
	byName     map[string]application.Processor
}

func NewRouter(processors ...application.Processor) *Router {
	r := &Router{byName: make(map[string]application.Processor, len(processors))}
	for _, p := range processors {
		r.processors = append(r.processors, p)
		r.byName[p.Name()] = p
	}
	return r
}

func (r *Router) Resolve(method domain.PaymentMethod) (application.Processor, error) {
	if name, ok := preferred[method]; ok {
		if p, ok := r.byName[name]; ok && p.Supports(method) {
			return p, nil
		}
	}
	for _, p := range r.processors {
		if p.Supports(method) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no processor supports payment method %s", method)
}

func (r *Router) ByName(name string) (application.Processor, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("processor %q is not registered", name)
	}
	return p, nil
}

// Names lists registered processors in registration order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.processors))
	for _, p := range r.processors {
		names = append(names, p.Name())
	}
	return names
}
