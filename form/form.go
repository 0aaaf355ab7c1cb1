// Package form holds the state of one order form and sends it to the order API.
package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/heladeria/order-form-api/models"
	"github.com/rs/zerolog/log"
)

// Form is the mutable record behind one order form instance.
// It is safe for concurrent use.
type Form struct {
	client *Client

	mu      sync.Mutex
	options []Option
	order   models.OrderSubmission
	flavors []string
	pending bool
}

// NewForm creates an empty form bound to client
func NewForm(client *Client) *Form {
	return &Form{client: client}
}

// Initialize loads the flavor options. A failed fetch leaves the options empty.
func (f *Form) Initialize(ctx context.Context) {
	options, err := f.client.FetchFlavors(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load flavor options")
		return
	}

	f.mu.Lock()
	f.options = options
	f.mu.Unlock()
}

// Options returns the flavor options loaded by Initialize
func (f *Form) Options() []Option {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Option(nil), f.options...)
}

func (f *Form) SetNombre(value string) {
	f.mu.Lock()
	f.order.Nombre = value
	f.mu.Unlock()
}

func (f *Form) SetMedida(value string) {
	f.mu.Lock()
	f.order.Medida = value
	f.mu.Unlock()
}

func (f *Form) SetCelular(value string) {
	f.mu.Lock()
	f.order.Celular = value
	f.mu.Unlock()
}

func (f *Form) SetDireccion(value string) {
	f.mu.Lock()
	f.order.Direccion = value
	f.mu.Unlock()
}

func (f *Form) SetMedioPago(value string) {
	f.mu.Lock()
	f.order.MedioPago = value
	f.mu.Unlock()
}

func (f *Form) SetMessage(value string) {
	f.mu.Lock()
	f.order.Message = value
	f.mu.Unlock()
}

// SelectFlavors replaces the selection. Blank and repeated values are dropped
// before keeping the first MaxFlavors.
func (f *Form) SelectFlavors(values ...string) {
	selected := make([]string, 0, models.MaxFlavors)
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		selected = append(selected, value)
		if len(selected) == models.MaxFlavors {
			break
		}
	}

	f.mu.Lock()
	f.flavors = selected
	f.mu.Unlock()
}

// SelectedFlavors returns the current flavor selection
func (f *Form) SelectedFlavors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.flavors...)
}

// Payload returns the order as it would be sent
func (f *Form) Payload() models.OrderSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloadLocked()
}

func (f *Form) payloadLocked() models.OrderSubmission {
	order := f.order
	order.Sabores = models.JoinFlavors(f.flavors)
	return order
}

// Validate checks the required fields, the enumerated values and, once options
// are loaded, that every selected flavor is one of them
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate(f.payloadLocked(), f.options)
}

func validate(order models.OrderSubmission, options []Option) error {
	fields := make(map[string]string)

	switch {
	case strings.TrimSpace(order.Medida) == "":
		fields["medida"] = "is required"
	case !models.IsValidMedida(order.Medida):
		fields["medida"] = "must be one of " + strings.Join(models.Medidas, ", ")
	}
	if strings.TrimSpace(order.Celular) == "" {
		fields["celular"] = "is required"
	}
	if strings.TrimSpace(order.Direccion) == "" {
		fields["direccion"] = "is required"
	}
	switch {
	case strings.TrimSpace(order.MedioPago) == "":
		fields["medio_pago"] = "is required"
	case !models.IsValidMedioPago(order.MedioPago):
		fields["medio_pago"] = "must be one of " + strings.Join(models.MediosPago, ", ")
	}
	if msg := checkFlavors(models.SplitFlavors(order.Sabores), options); msg != "" {
		fields["sabores"] = msg
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkFlavors(flavors []string, options []Option) string {
	if len(flavors) > models.MaxFlavors {
		return fmt.Sprintf("must list at most %d flavors", models.MaxFlavors)
	}

	known := make(map[string]struct{}, len(options))
	for _, o := range options {
		known[o.Value] = struct{}{}
	}

	seen := make(map[string]struct{}, len(flavors))
	for _, flavor := range flavors {
		if _, dup := seen[flavor]; dup {
			return "must not repeat " + flavor
		}
		seen[flavor] = struct{}{}

		// Without loaded options the server's catalog is the only check
		if len(options) > 0 {
			if _, ok := known[flavor]; !ok {
				return "unknown flavor " + flavor
			}
		}
	}
	return ""
}

// Pending reports whether a submit is in flight
func (f *Form) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Submit sends the order and returns the spreadsheet's table range.
// The form is cleared only when the API confirms the append.
func (f *Form) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return "", ErrSubmitInProgress
	}
	order := f.payloadLocked()
	if err := validate(order, f.options); err != nil {
		f.mu.Unlock()
		return "", err
	}
	f.pending = true
	f.mu.Unlock()

	tableRange, err := f.client.SubmitOrder(ctx, order)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = false
	if err != nil {
		return "", err
	}

	f.order = models.OrderSubmission{}
	f.flavors = nil
	return tableRange, nil
}
