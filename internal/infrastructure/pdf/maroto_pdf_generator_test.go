package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/Solar-Invoicing-api/internal/application/billing"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/infrastructure/pdf"
)

func TestGenerateInvoicePDF_GeneraDocumento(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator()
	inv := &entity.Invoice{
		ID:            "inv-1",
		Number:        "INV-1700000000000",
		PaymentStatus: entity.PaymentStatusPending,
		PaymentMethod: entity.PaymentMethodNone,
		Subtotal:      decimal.NewFromInt(250),
		TaxRate:       decimal.NewFromInt(10),
		TaxAmount:     decimal.NewFromInt(25),
		GrandTotal:    decimal.NewFromInt(275),
		EmployeeEmail: "ana@solar.test",
		CreatedAt:     time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	items := []entity.InvoiceItem{
		{ProductName: "Panel 450W", Rate: decimal.NewFromInt(100), Quantity: 2},
		{ProductName: "Cableado", Rate: decimal.NewFromInt(50), Quantity: 1},
	}

	out, err := g.GenerateInvoicePDF(context.Background(), appbilling.InvoiceDocument{
		CompanyName: "Sunrise Solar",
		Invoice:     inv,
		Items:       items,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDF_FacturaNula(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), appbilling.InvoiceDocument{})
	assert.Error(t, err)
}
