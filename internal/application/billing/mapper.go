package billing

import (
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

const moneyPlaces = 2

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.Number,
		PaymentStatus: inv.PaymentStatus,
		PaymentMethod: inv.PaymentMethod,
		Subtotal:      inv.Subtotal.Round(moneyPlaces),
		TaxRate:       inv.TaxRate.Round(moneyPlaces),
		TaxAmount:     inv.TaxAmount.Round(moneyPlaces),
		TotalAmount:   inv.GrandTotal.Round(moneyPlaces),
		EmployeeEmail: inv.EmployeeEmail,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func toDetailResponse(inv *entity.Invoice, items []entity.InvoiceItem) *dto.InvoiceDetailResponse {
	resp := &dto.InvoiceDetailResponse{
		Invoice: toInvoiceResponse(inv),
		Items:   make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			ServiceID:   it.ServiceID,
			ProductName: it.ProductName,
			Rate:        it.Rate.Round(moneyPlaces),
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal().Round(moneyPlaces),
		})
	}
	return resp
}
