package quote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

var buildNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func validInput() Input {
	return Input{
		QuotationNumber: " 1042 ",
		Customer:        Customer{Name: "  Rahul Sharma ", Phone: " 98765 "},
		ProjectName:     "Villa",
		Items: []ItemInput{
			{Category: " Kitchen ", Description: " Modular kitchen ", Quantity: 1, UnitPrice: 100000},
			{Category: "Living", Description: "TV unit", Quantity: 2, UnitPrice: 25000},
		},
		TaxRate:       18,
		ValidityDays:  15,
		QuotationDate: "2024-05-01",
	}
}

func TestBuild(t *testing.T) {
	q, err := Build(validInput(), buildNow)
	require.NoError(t, err)

	assert.Equal(t, "1042", q.Number)
	assert.Equal(t, "Rahul Sharma", q.Customer.Name)
	assert.Equal(t, "98765", q.Customer.Phone)
	assert.Equal(t, "Kitchen", q.Items[0].Category)
	assert.Equal(t, "Modular kitchen", q.Items[0].Description)
	assert.Equal(t, StatusCreated, q.Status)
	assert.Nil(t, q.DeliveredOn)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), q.QuotationDate)
	assert.InDelta(t, 177000, q.Amount, 1e-9)
}

func TestBuildValidationOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   string
	}{
		{
			name: "blank name wins over every item problem",
			mutate: func(in *Input) {
				in.Customer.Name = "   "
				in.Items[0] = ItemInput{}
			},
			want: msgCustomerName,
		},
		{
			name:   "no items",
			mutate: func(in *Input) { in.Items = nil },
			want:   msgNoItems,
		},
		{
			name: "missing category reported before description on an earlier item",
			mutate: func(in *Input) {
				in.Items[0].Description = ""
				in.Items[1].Category = " "
			},
			want: msgCategory,
		},
		{
			name:   "missing description",
			mutate: func(in *Input) { in.Items[1].Description = "  " },
			want:   msgDescription,
		},
		{
			name: "description reported before price",
			mutate: func(in *Input) {
				in.Items[0].UnitPrice = 0
				in.Items[1].Description = ""
			},
			want: msgDescription,
		},
		{
			name:   "zero quantity",
			mutate: func(in *Input) { in.Items[0].Quantity = 0 },
			want:   msgQtyPrice,
		},
		{
			name:   "negative price",
			mutate: func(in *Input) { in.Items[1].UnitPrice = -5 },
			want:   msgQtyPrice,
		},
		{
			name:   "unparseable date",
			mutate: func(in *Input) { in.QuotationDate = "01/05/2024" },
			want:   msgDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := Build(in, buildNow)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
			assert.Equal(t, tt.want, apperrors.As(err).Message())
		})
	}
}

func TestBuildDates(t *testing.T) {
	in := validInput()
	in.QuotationDate = ""
	q, err := Build(in, buildNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), q.QuotationDate)

	in.QuotationDate = "2024-04-30T23:15:00Z"
	q, err = Build(in, buildNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), q.QuotationDate)
}

func TestBuildDeliveredOn(t *testing.T) {
	in := validInput()
	in.Status = "delivered"
	in.DeliveredOn = "2024-05-08"
	q, err := Build(in, buildNow)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, q.Status)
	require.NotNil(t, q.DeliveredOn)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), *q.DeliveredOn)

	in.Status = "Sent"
	q, err = Build(in, buildNow)
	require.NoError(t, err)
	assert.Nil(t, q.DeliveredOn)
}

func TestNumberUnmarshal(t *testing.T) {
	var in Input
	raw := `{"taxRate":"12.5","validityDays":null,"items":[{"quantity":"abc","unitPrice":1999.99}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &in))

	assert.Equal(t, Number(12.5), in.TaxRate)
	assert.Equal(t, Number(0), in.ValidityDays)
	assert.Equal(t, Number(0), in.Items[0].Quantity)
	assert.Equal(t, Number(1999.99), in.Items[0].UnitPrice)
}

func TestExtractNumber(t *testing.T) {
	assert.Equal(t, int64(1042), ExtractNumber("1042"))
	assert.Equal(t, int64(999), ExtractNumber("Q-999"))
	assert.Equal(t, int64(0), ExtractNumber("draft"))
	assert.Equal(t, int64(0), ExtractNumber("99999999999999999999999"))
}

func TestNextNumber(t *testing.T) {
	assert.Equal(t, int64(1000), NextNumber(nil))
	assert.Equal(t, int64(1000), NextNumber([]string{"12", "draft"}))
	assert.Equal(t, int64(1003), NextNumber([]string{"1000", "1002", "Q-999"}))
	assert.Equal(t, int64(2501), NextNumber([]string{"VI/2500"}))
}
