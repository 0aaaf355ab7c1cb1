package form

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/heladeria/order-form-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderAPI is a fake order API that records submissions
type orderAPI struct {
	mu          sync.Mutex
	submissions []models.OrderSubmission
	status      int
	body        string
	block       chan struct{}
	entered     chan struct{}
}

func newOrderAPI() *orderAPI {
	return &orderAPI{
		status: http.StatusCreated,
		body:   `{"success":true,"data":{"tableRange":"Sheet1!A1:G5"}}`,
	}
}

func (a *orderAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/fetchData":
		_, _ = io.WriteString(w, `{"rows":[["Vanilla"],["Chocolate"],["Frutilla"],["Limon"],["Menta"]]}`)
	case "/api/submit":
		var order models.OrderSubmission
		_ = json.NewDecoder(r.Body).Decode(&order)

		a.mu.Lock()
		a.submissions = append(a.submissions, order)
		block, entered := a.block, a.entered
		status, body := a.status, a.body
		a.mu.Unlock()

		if entered != nil {
			entered <- struct{}{}
		}
		if block != nil {
			<-block
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	default:
		http.NotFound(w, r)
	}
}

func (a *orderAPI) last() models.OrderSubmission {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submissions[len(a.submissions)-1]
}

func (a *orderAPI) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.submissions)
}

func newTestForm(t *testing.T, api *orderAPI) *Form {
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return NewForm(NewClient(server.URL))
}

func fillValidOrder(f *Form) {
	f.SetNombre("Ana")
	f.SetMedida(models.MedidaMedioKg)
	f.SelectFlavors("Vanilla", "Chocolate")
	f.SetCelular("1122334455")
	f.SetDireccion("Calle 1")
	f.SetMedioPago(models.MedioEfectivo)
	f.SetMessage("hi")
}

func TestForm_Initialize(t *testing.T) {
	f := newTestForm(t, newOrderAPI())

	f.Initialize(context.Background())

	options := f.Options()
	require.Len(t, options, 5)
	assert.Equal(t, Option{Value: "Vanilla", Label: "Vanilla"}, options[0])
}

func TestForm_InitializeFailureLeavesOptionsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewForm(NewClient(server.URL))
	f.Initialize(context.Background())

	assert.Empty(t, f.Options())
}

func TestForm_SelectFlavorsCapsAtFour(t *testing.T) {
	f := NewForm(NewClient("http://localhost"))

	f.SelectFlavors("Vanilla", "Chocolate", "Frutilla", "Limon", "Menta")

	assert.Equal(t, []string{"Vanilla", "Chocolate", "Frutilla", "Limon"}, f.SelectedFlavors())
	assert.Equal(t, "Vanilla, Chocolate, Frutilla, Limon", f.Payload().Sabores)
}

func TestForm_SelectFlavors(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected []string
	}{
		{
			name:     "repeats are dropped",
			values:   []string{"Vanilla", "Vanilla", "Chocolate"},
			expected: []string{"Vanilla", "Chocolate"},
		},
		{
			name:     "repeats do not use up the four slots",
			values:   []string{"Vanilla", "Vanilla", "Chocolate", "Frutilla", "Limon"},
			expected: []string{"Vanilla", "Chocolate", "Frutilla", "Limon"},
		},
		{
			name:     "blank values are dropped",
			values:   []string{" ", "Menta ", ""},
			expected: []string{"Menta"},
		},
		{
			name:     "empty selection",
			values:   nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(NewClient("http://localhost"))

			f.SelectFlavors(tt.values...)

			if tt.expected == nil {
				assert.Empty(t, f.SelectedFlavors())
				return
			}
			assert.Equal(t, tt.expected, f.SelectedFlavors())
		})
	}
}

func TestForm_ValidateRejectsFlavorOutsideOptions(t *testing.T) {
	api := newOrderAPI()
	f := newTestForm(t, api)
	f.Initialize(context.Background())
	fillValidOrder(f)
	f.SelectFlavors("Vanilla", "Pistacho")

	err := f.Validate()

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "unknown flavor Pistacho", validationErr.Fields["sabores"])

	_, err = f.Submit(context.Background())
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 0, api.count(), "unknown flavors are never sent")
}

func TestForm_DuplicateSelectionIsSubmittable(t *testing.T) {
	api := newOrderAPI()
	f := newTestForm(t, api)
	f.Initialize(context.Background())
	fillValidOrder(f)
	f.SelectFlavors("Vanilla", "Vanilla", "Chocolate")

	require.NoError(t, f.Validate())
	_, err := f.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Vanilla, Chocolate", api.last().Sabores)
}

func TestForm_Payload(t *testing.T) {
	f := NewForm(NewClient("http://localhost"))
	fillValidOrder(f)

	assert.Equal(t, models.OrderSubmission{
		Nombre:    "Ana",
		Medida:    "medio kg",
		Sabores:   "Vanilla, Chocolate",
		Celular:   "1122334455",
		Direccion: "Calle 1",
		MedioPago: "efectivo",
		Message:   "hi",
	}, f.Payload())
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(f *Form)
		expectedFields []string
	}{
		{
			name:   "complete order",
			modify: func(f *Form) {},
		},
		{
			name: "optional fields may be empty",
			modify: func(f *Form) {
				f.SetNombre("")
				f.SetMessage("")
				f.SelectFlavors()
			},
		},
		{
			name:           "missing medida",
			modify:         func(f *Form) { f.SetMedida("") },
			expectedFields: []string{"medida"},
		},
		{
			name:           "unknown medida",
			modify:         func(f *Form) { f.SetMedida("2 kg") },
			expectedFields: []string{"medida"},
		},
		{
			name: "blank contact data",
			modify: func(f *Form) {
				f.SetCelular(" ")
				f.SetDireccion("")
			},
			expectedFields: []string{"celular", "direccion"},
		},
		{
			name:           "unknown medio_pago",
			modify:         func(f *Form) { f.SetMedioPago("tarjeta") },
			expectedFields: []string{"medio_pago"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(NewClient("http://localhost"))
			fillValidOrder(f)
			tt.modify(f)

			err := f.Validate()
			if len(tt.expectedFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Len(t, validationErr.Fields, len(tt.expectedFields))
			for _, field := range tt.expectedFields {
				assert.Contains(t, validationErr.Fields, field)
			}
		})
	}
}

func TestForm_SubmitSuccessResets(t *testing.T) {
	api := newOrderAPI()
	f := newTestForm(t, api)
	f.Initialize(context.Background())
	fillValidOrder(f)

	tableRange, err := f.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:G5", tableRange)
	assert.Equal(t, "Vanilla, Chocolate", api.last().Sabores)
	assert.Equal(t, "Ana", api.last().Nombre)

	assert.Equal(t, models.OrderSubmission{}, f.Payload())
	assert.Empty(t, f.SelectedFlavors())
	assert.Len(t, f.Options(), 5, "options survive a reset")
	assert.False(t, f.Pending())
}

func TestForm_SubmitFailureKeepsValues(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"message":"boom"}`,
		},
		{
			name:   "permission error",
			status: http.StatusForbidden,
			body:   `{"success":false,"message":"The caller does not have permission"}`,
		},
		{
			name:   "malformed error body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newOrderAPI()
			api.status = tt.status
			api.body = tt.body
			f := newTestForm(t, api)
			fillValidOrder(f)
			before := f.Payload()

			tableRange, err := f.Submit(context.Background())

			var submitErr *SubmitError
			require.True(t, errors.As(err, &submitErr))
			assert.Equal(t, tt.status, submitErr.Status)
			assert.Empty(t, tableRange)
			assert.Equal(t, before, f.Payload())
			assert.False(t, f.Pending())
		})
	}
}

func TestForm_SubmitNetworkFailureKeepsValues(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := NewForm(NewClient(url))
	fillValidOrder(f)
	before := f.Payload()

	_, err := f.Submit(context.Background())

	assert.Error(t, err)
	assert.Equal(t, before, f.Payload())
}

func TestForm_SubmitRefusesInvalidForm(t *testing.T) {
	api := newOrderAPI()
	f := newTestForm(t, api)
	fillValidOrder(f)
	f.SetCelular("")

	_, err := f.Submit(context.Background())

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 0, api.count(), "invalid forms are never sent")
	assert.Equal(t, "Ana", f.Payload().Nombre)
}

func TestForm_SubmitWithoutFlavorOptions(t *testing.T) {
	api := newOrderAPI()
	f := newTestForm(t, api)
	fillValidOrder(f)
	f.SelectFlavors()

	_, err := f.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "", api.last().Sabores)
}

func TestForm_SubmitWhilePending(t *testing.T) {
	api := newOrderAPI()
	api.block = make(chan struct{})
	api.entered = make(chan struct{}, 1)
	f := newTestForm(t, api)
	fillValidOrder(f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	<-api.entered
	assert.True(t, f.Pending())

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.count())
	assert.False(t, f.Pending())
}
