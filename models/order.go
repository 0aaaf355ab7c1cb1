package models

import "strings"

// Sizes accepted for the medida field
const (
	MedidaCuarto  = "un cuarto"
	MedidaMedioKg = "medio kg"
	MedidaUnKg    = "un kg"
)

// Payment methods accepted for the medio_pago field
const (
	MedioEfectivo = "efectivo"
	MedioTransfer = "transferencia"
)

const (
	// MaxFlavors is the most flavors a single order may carry
	MaxFlavors = 4
	// FlavorSeparator joins selected flavors into the sabores cell
	FlavorSeparator = ", "
)

// Medidas lists the valid sizes in display order
var Medidas = []string{MedidaCuarto, MedidaMedioKg, MedidaUnKg}

// MediosPago lists the valid payment methods in display order
var MediosPago = []string{MedioEfectivo, MedioTransfer}

// OrderSubmission is one customer order as posted by the form.
// Field order matches the spreadsheet columns.
type OrderSubmission struct {
	Nombre    string `json:"nombre"`
	Medida    string `json:"medida" binding:"required,oneof='un cuarto' 'medio kg' 'un kg'"`
	Sabores   string `json:"sabores" binding:"maxflavors=4"`
	Celular   string `json:"celular" binding:"required,notblank"`
	Direccion string `json:"direccion" binding:"required,notblank"`
	MedioPago string `json:"medio_pago" binding:"required,oneof=efectivo transferencia"`
	Message   string `json:"message"`
}

// Row returns the cell values in column order:
// nombre, medida, sabores, celular, direccion, medio_pago, message
func (o OrderSubmission) Row() []string {
	return []string{
		strings.TrimSpace(o.Nombre),
		strings.TrimSpace(o.Medida),
		JoinFlavors(SplitFlavors(o.Sabores)),
		strings.TrimSpace(o.Celular),
		strings.TrimSpace(o.Direccion),
		strings.TrimSpace(o.MedioPago),
		strings.TrimSpace(o.Message),
	}
}

// Flavors returns the individual flavor labels of the submission
func (o OrderSubmission) Flavors() []string {
	return SplitFlavors(o.Sabores)
}

// SplitFlavors splits a comma-joined flavor string, dropping blank entries
func SplitFlavors(joined string) []string {
	var labels []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}

// JoinFlavors joins flavor labels the way they are stored in the sheet
func JoinFlavors(labels []string) string {
	return strings.Join(labels, FlavorSeparator)
}

// IsValidMedida reports whether value is one of the accepted sizes
func IsValidMedida(value string) bool {
	return contains(Medidas, value)
}

// IsValidMedioPago reports whether value is one of the accepted payment methods
func IsValidMedioPago(value string) bool {
	return contains(MediosPago, value)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
