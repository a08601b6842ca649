package quote

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

// Number accepts a JSON number, a numeric string or null. Anything that does
// not parse becomes zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Input is the raw quotation form as submitted by the client.
type Input struct {
	QuotationNumber string      `json:"quotationNumber"`
	Customer        Customer    `json:"customer"`
	ProjectName     string      `json:"projectName"`
	Items           []ItemInput `json:"items"`
	TaxRate         Number      `json:"taxRate"`
	ValidityDays    Number      `json:"validityDays"`
	QuotationDate   string      `json:"quotationDate"`
	Status          string      `json:"status"`
	DeliveredOn     string      `json:"deliveredOn"`
	Notes           string      `json:"notes"`
}

type ItemInput struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	UnitPrice   Number `json:"unitPrice"`
}

const (
	msgCustomerName = "Please enter customer name."
	msgCategory     = "Please enter category for all items."
	msgDescription  = "Please fill in all item descriptions."
	msgQtyPrice     = "Please ensure all items have valid quantity and price."
	msgNoItems      = "Please add at least one item."
	msgDate         = "Quotation date must be a valid date (YYYY-MM-DD)."
)

// Build sanitizes the input and validates it. Checks run in a fixed order and
// the first failure is returned as a validation error.
// now supplies the quotation date when the input leaves it blank.
func Build(in Input, now time.Time) (Quote, error) {
	q := Quote{
		Number:         strings.TrimSpace(in.QuotationNumber),
		Customer:       trimCustomer(in.Customer),
		ProjectName:    strings.TrimSpace(in.ProjectName),
		TaxRatePercent: float64(in.TaxRate),
		ValidityDays:   int(in.ValidityDays),
		Notes:          strings.TrimSpace(in.Notes),
		Status:         NormalizeStatus(in.Status),
	}
	for _, it := range in.Items {
		q.Items = append(q.Items, Item{
			Category:    strings.TrimSpace(it.Category),
			Description: strings.TrimSpace(it.Description),
			Quantity:    float64(it.Quantity),
			UnitPrice:   float64(it.UnitPrice),
		})
	}

	if err := validate(q); err != nil {
		return Quote{}, err
	}

	date, err := parseDate(in.QuotationDate, now)
	if err != nil {
		return Quote{}, apperrors.Wrap(apperrors.CodeValidation, err, msgDate).
			WithDetails(map[string]any{"field": "quotationDate"})
	}
	q.QuotationDate = date

	if q.Status == StatusDelivered {
		delivered, err := parseDate(in.DeliveredOn, now)
		if err != nil {
			return Quote{}, apperrors.Wrap(apperrors.CodeValidation, err, "Delivered date must be a valid date.").
				WithDetails(map[string]any{"field": "deliveredOn"})
		}
		q.DeliveredOn = &delivered
	}

	q.Amount = q.Totals().GrandTotal
	return q, nil
}

func validate(q Quote) error {
	if q.Customer.Name == "" {
		return validationError(msgCustomerName, "customer.name")
	}
	if len(q.Items) == 0 {
		return validationError(msgNoItems, "items")
	}
	for _, it := range q.Items {
		if it.Category == "" {
			return validationError(msgCategory, "items.category")
		}
	}
	for _, it := range q.Items {
		if it.Description == "" {
			return validationError(msgDescription, "items.description")
		}
	}
	for _, it := range q.Items {
		if !(it.Quantity > 0) || !(it.UnitPrice > 0) {
			return validationError(msgQtyPrice, "items.quantity")
		}
	}
	return nil
}

func validationError(msg, field string) error {
	return apperrors.New(apperrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func trimCustomer(c Customer) Customer {
	return Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
		City:    strings.TrimSpace(c.City),
		State:   strings.TrimSpace(c.State),
		Pincode: strings.TrimSpace(c.Pincode),
		TaxID:   strings.TrimSpace(c.TaxID),
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// UTC day. An empty value yields the day of fallback.
func parseDate(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return truncateDay(fallback), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExtractNumber returns the integer formed by the digits of a quotation
// number, or 0 when there are none or they overflow.
func ExtractNumber(number string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// NextNumber suggests the quotation number following the highest one in
// existing, never below MinNumber. Uniqueness is still enforced by the store.
func NextNumber(existing []string) int64 {
	highest := int64(MinNumber - 1)
	for _, n := range existing {
		if v := ExtractNumber(n); v > highest {
			highest = v
		}
	}
	return highest + 1
}
