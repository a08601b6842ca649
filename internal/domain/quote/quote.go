package quote

import (
	"errors"
	"math"
	"strings"
	"time"
)

// MinNumber is the first quotation number handed out by NextNumber.
const MinNumber = 1000

var (
	ErrNotFound = errors.New("quotation not found")
	ErrConflict = errors.New("quotation number already exists")
)

type Status string

const (
	StatusCreated   Status = "Created"
	StatusSent      Status = "Sent"
	StatusDelivered Status = "Delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusSent, StatusDelivered:
		return true
	}
	return false
}

// NormalizeStatus maps stored or user supplied values onto a known status.
// Matching is case-insensitive; anything unrecognised is Created.
func NormalizeStatus(v string) Status {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "delivered":
		return StatusDelivered
	case "sent":
		return StatusSent
	}
	return StatusCreated
}

type Quote struct {
	ID             string     `json:"id"`
	Number         string     `json:"quotationNumber"`
	Customer       Customer   `json:"customer"`
	ProjectName    string     `json:"projectName"`
	Items          []Item     `json:"items"`
	TaxRatePercent float64    `json:"taxRate"`
	ValidityDays   int        `json:"validityDays"`
	QuotationDate  time.Time  `json:"quotationDate"`
	DeliveredOn    *time.Time `json:"deliveredOn"`
	Status         Status     `json:"status"`
	Amount         float64    `json:"amount"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	TaxID   string `json:"gstin"`
}

type Item struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// LineTotal is quantity times unit price, with non-finite inputs read as zero.
func (it Item) LineTotal() float64 {
	return Finite(it.Quantity) * Finite(it.UnitPrice)
}

type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grandTotal"`
}

// ComputeTotals derives subtotal, tax and grand total from the items alone.
func ComputeTotals(items []Item, taxRatePercent float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	tax := subtotal * Finite(taxRatePercent) / 100
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal + tax,
	}
}

func (q Quote) Totals() Totals {
	return ComputeTotals(q.Items, q.TaxRatePercent)
}

// ValidUntil is the quotation date pushed forward by the validity window.
func (q Quote) ValidUntil() time.Time {
	return q.QuotationDate.AddDate(0, 0, q.ValidityDays)
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
