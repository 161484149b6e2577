package billing_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/billing"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func int64Ptr(v int64) *int64 { return &v }

func employeeSession() *entity.Session {
	return &entity.Session{UserID: "u-emp", Email: "ana@solar.test", Role: entity.RoleEmployee, ExpiresAt: time.Now().Add(time.Hour)}
}

// otherEmployeeSession empleado distinto del dueño de inv-1.
func otherEmployeeSession() *entity.Session {
	return &entity.Session{UserID: "u-otro", Email: "otro@solar.test", Role: entity.RoleEmployee, ExpiresAt: time.Now().Add(time.Hour)}
}

func adminSession() *entity.Session {
	return &entity.Session{UserID: "u-admin", Email: "admin@solar.test", Role: entity.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
}

type fixture struct {
	store    *memStore
	services *memServiceRepo
	observer *countingObserver
	uc       *billing.InvoiceUseCase
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	store := newMemStore()
	services := &memServiceRepo{services: map[string]*entity.Service{
		"svc-panel": {ID: "svc-panel", ProductName: "Panel 450W", Rate: dec("100"), Quantity: int64Ptr(10)},
		"svc-cable": {ID: "svc-cable", ProductName: "Cableado", Rate: dec("50")},
		"svc-empty": {ID: "svc-empty", ProductName: "Batería 5kWh", Rate: dec("900"), Quantity: int64Ptr(0)},
	}}
	obs := &countingObserver{}
	uc := billing.NewInvoiceUseCase(fakeTx{store}, memInvoiceRepo{store}, memItemRepo{store}, services, billing.Options{
		DefaultTaxRate: dec("10"),
		StoreTimeout:   timeout,
		Observer:       obs,
		Clock:          func() time.Time { return fixedNow },
	})
	return &fixture{store: store, services: services, observer: obs, uc: uc}
}

// seedInvoice crea una factura Pending con tres líneas (100x2, 50x1, 20x3) a 10%.
func (f *fixture) seedInvoice() entity.Invoice {
	inv := entity.Invoice{
		ID: "inv-1", Number: "INV-1", PaymentStatus: entity.PaymentStatusPending, PaymentMethod: entity.PaymentMethodNone,
		Subtotal: dec("310"), TaxRate: dec("10"), TaxAmount: dec("31"), GrandTotal: dec("341"),
		EmployeeEmail: "ana@solar.test", Version: 1, CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	f.store.seed(inv,
		entity.InvoiceItem{ID: "it-1", InvoiceID: "inv-1", ProductName: "Panel 450W", Rate: dec("100"), Quantity: 2},
		entity.InvoiceItem{ID: "it-2", InvoiceID: "inv-1", ProductName: "Cableado", Rate: dec("50"), Quantity: 1},
		entity.InvoiceItem{ID: "it-3", InvoiceID: "inv-1", ProductName: "Conector MC4", Rate: dec("20"), Quantity: 3},
	)
	return inv
}

func itemNames(items []dto.InvoiceItemResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductName)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_CarritoDelCatalogo(t *testing.T) {
	f := newFixture(t, 0)

	resp, err := f.uc.CreateInvoice(context.Background(), employeeSession(), dto.CreateInvoiceRequest{
		CartItems: []dto.CartItemRequest{
			{ServiceID: "svc-panel", Quantity: 2},
			{ServiceID: "svc-cable", Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Invoice.Subtotal.Equal(dec("250")))
	assert.True(t, resp.Invoice.TaxAmount.Equal(dec("25")))
	assert.True(t, resp.Invoice.TotalAmount.Equal(dec("275")))
	assert.Equal(t, entity.PaymentStatusPending, resp.Invoice.PaymentStatus)
	assert.Equal(t, entity.PaymentMethodNone, resp.Invoice.PaymentMethod)
	assert.Equal(t, "ana@solar.test", resp.Invoice.EmployeeEmail)
	assert.Equal(t, "INV-1773576000000", resp.Invoice.InvoiceNumber)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "svc-panel", resp.Items[0].ServiceID)
	assert.Equal(t, "Panel 450W", resp.Items[0].ProductName)

	persisted := f.store.items[resp.Invoice.ID]
	require.Len(t, persisted, 2)
	for _, it := range persisted {
		assert.Equal(t, resp.Invoice.ID, it.InvoiceID)
	}
}

func TestCreateInvoice_CantidadCeroPasaAUno(t *testing.T) {
	f := newFixture(t, 0)

	resp, err := f.uc.CreateInvoice(context.Background(), employeeSession(), dto.CreateInvoiceRequest{
		CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Items[0].Quantity)
	assert.True(t, resp.Invoice.Subtotal.Equal(dec("50")))
}

func TestCreateInvoice_LineaLibreConTasaExplicita(t *testing.T) {
	f := newFixture(t, 0)

	resp, err := f.uc.CreateInvoice(context.Background(), employeeSession(), dto.CreateInvoiceRequest{
		CartItems: []dto.CartItemRequest{{ProductName: "Visita técnica", Rate: decPtr("80"), Quantity: 1}},
		TaxRate:   decPtr("0"),
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Items[0].ServiceID)
	assert.True(t, resp.Invoice.TotalAmount.Equal(dec("80")))
}

func TestCreateInvoice_Rechazos(t *testing.T) {
	cases := []struct {
		name    string
		session *entity.Session
		in      dto.CreateInvoiceRequest
		want    error
	}{
		{"sin sesión", nil, dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}}}, domain.ErrUnauthenticated},
		{"carrito vacío", employeeSession(), dto.CreateInvoiceRequest{}, domain.ErrInvalidInput},
		{"cantidad negativa", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable", Quantity: -1}}}, domain.ErrInvalidInput},
		{"sin existencias", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "svc-empty", Quantity: 1}}}, domain.ErrOutOfStock},
		{"más que el stock", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "svc-panel", Quantity: 11}}}, domain.ErrOutOfStock},
		{"servicio inexistente", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "nope", Quantity: 1}}}, domain.ErrNotFound},
		{"línea libre sin tarifa", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ProductName: "X", Quantity: 1}}}, domain.ErrInvalidInput},
		{"tasa fuera de rango", employeeSession(), dto.CreateInvoiceRequest{CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}}, TaxRate: decPtr("101")}, domain.ErrInvalidInput},
		{"empleado a nombre de otro", employeeSession(), dto.CreateInvoiceRequest{EmployeeEmail: "otro@solar.test", CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}}}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 0)
			_, err := f.uc.CreateInvoice(context.Background(), tc.session, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.store.invoices, "no debe persistirse nada")
		})
	}
}

func TestCreateInvoice_AdminFacturaANombreDeEmpleado(t *testing.T) {
	f := newFixture(t, 0)

	resp, err := f.uc.CreateInvoice(context.Background(), adminSession(), dto.CreateInvoiceRequest{
		EmployeeEmail: "ana@solar.test",
		CartItems:     []dto.CartItemRequest{{ServiceID: "svc-cable"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@solar.test", resp.Invoice.EmployeeEmail)
}

func TestCreateInvoice_FalloAlInsertarNoDejaCabecera(t *testing.T) {
	f := newFixture(t, 0)
	f.store.failInsert = errors.New("insert falló")

	_, err := f.uc.CreateInvoice(context.Background(), employeeSession(), dto.CreateInvoiceRequest{
		CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}},
	})

	require.Error(t, err)
	assert.Empty(t, f.store.invoices)
	assert.Empty(t, f.store.items)
}

func TestCreateInvoice_ReintentaNumeroDuplicado(t *testing.T) {
	f := newFixture(t, 0)
	f.store.failCreate = []error{domain.ErrDuplicate}

	resp, err := f.uc.CreateInvoice(context.Background(), employeeSession(), dto.CreateInvoiceRequest{
		CartItems: []dto.CartItemRequest{{ServiceID: "svc-cable"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-1773576000001", resp.Invoice.InvoiceNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReconcileItems
// ──────────────────────────────────────────────────────────────────────────────

// Dos líneas originales + una nueva: quedan exactamente tres y el total sale de ellas.
func TestReconcileItems_QuitaUnaYAgregaOtra(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{
			{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 2},
			{ProductName: "Cableado", Rate: decPtr("50"), Quantity: 1},
			{ProductName: "Inversor 5kW", Rate: decPtr("700"), Quantity: 1},
		},
	})

	require.NoError(t, err)
	persisted := f.store.items["inv-1"]
	require.Len(t, persisted, 3)
	assert.ElementsMatch(t, []string{"Panel 450W", "Cableado", "Inversor 5kW"}, itemNames(resp.Items))
	assert.NotContains(t, itemNames(resp.Items), "Conector MC4")
	// 950 + 10% = 1045 (se conserva la tasa vigente)
	assert.True(t, f.store.invoices["inv-1"].GrandTotal.Equal(dec("1045")))
	assert.True(t, resp.Invoice.TotalAmount.Equal(dec("1045")))
	assert.Equal(t, int64(2), resp.Invoice.Version)
	assert.Equal(t, 1, f.observer.outcomes[billing.OutcomeSuccess])
}

func TestReconcileItems_Idempotente(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()
	req := dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{
			{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 3},
			{ProductName: "Cableado", Rate: decPtr("50"), Quantity: 2},
		},
		TaxRate: decPtr("5"),
	}

	first, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", req)
	require.NoError(t, err)
	afterFirst := f.store.items["inv-1"]

	second, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", req)
	require.NoError(t, err)
	afterSecond := f.store.items["inv-1"]

	assert.True(t, first.Invoice.TotalAmount.Equal(second.Invoice.TotalAmount))
	assert.True(t, second.Invoice.TotalAmount.Equal(dec("420")))
	require.Len(t, afterSecond, len(afterFirst))
	for i := range afterFirst {
		assert.Equal(t, afterFirst[i].ProductName, afterSecond[i].ProductName)
		assert.True(t, afterFirst[i].Rate.Equal(afterSecond[i].Rate))
		assert.Equal(t, afterFirst[i].Quantity, afterSecond[i].Quantity)
	}
}

func TestReconcileItems_FalloAlInsertarConservaLineas(t *testing.T) {
	f := newFixture(t, 0)
	before := f.seedInvoice()
	itemsBefore := append([]entity.InvoiceItem(nil), f.store.items["inv-1"]...)
	f.store.failInsert = errors.New("conexión interrumpida")

	_, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{ProductName: "Inversor 5kW", Rate: decPtr("700"), Quantity: 1}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReconciliationFailed)
	assert.Equal(t, 1, f.store.deleteCalls, "el borrado se ejecutó antes del fallo")
	assert.Equal(t, itemsBefore, f.store.items["inv-1"])
	assert.True(t, f.store.invoices["inv-1"].GrandTotal.Equal(before.GrandTotal))
	assert.Equal(t, before.Version, f.store.invoices["inv-1"].Version)
	assert.Equal(t, 1, f.observer.outcomes[billing.OutcomeFailed])
}

func TestReconcileItems_FalloAlActualizarTotales(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()
	itemsBefore := append([]entity.InvoiceItem(nil), f.store.items["inv-1"]...)
	f.store.failUpdate = errors.New("update falló")

	_, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{ProductName: "Inversor 5kW", Rate: decPtr("700"), Quantity: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrReconciliationFailed)
	assert.Equal(t, itemsBefore, f.store.items["inv-1"])
}

func TestReconcileItems_IgnoraInvoiceIDDelCliente(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	_, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{InvoiceID: "inv-otra", ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 1}},
	})

	require.NoError(t, err)
	require.Len(t, f.store.items["inv-1"], 1)
	assert.Equal(t, "inv-1", f.store.items["inv-1"][0].InvoiceID)
	assert.Empty(t, f.store.items["inv-otra"])
}

func TestReconcileItems_TotalExplicitoDerivaTasa(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items:      []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 2}},
		GrandTotal: decPtr("230"),
	})

	require.NoError(t, err)
	assert.True(t, resp.Invoice.TaxRate.Equal(dec("15")))
	assert.True(t, resp.Invoice.TaxAmount.Equal(dec("30")))
}

func TestReconcileItems_TotalYTasaInconsistentes(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	_, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items:      []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 2}},
		GrandTotal: decPtr("230"),
		TaxRate:    decPtr("10"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.store.deleteCalls)
}

func TestReconcileItems_Rechazos(t *testing.T) {
	valid := []dto.InvoiceItemRequest{{ProductName: "Panel", Rate: decPtr("1"), Quantity: 1}}
	cases := []struct {
		name    string
		session *entity.Session
		id      string
		in      dto.UpdateInvoiceItemsRequest
		want    error
	}{
		{"sin sesión", nil, "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid}, domain.ErrUnauthenticated},
		{"rol desconocido", &entity.Session{UserID: "x", Role: "guest"}, "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid}, domain.ErrUnauthenticated},
		{"factura inexistente", employeeSession(), "inv-404", dto.UpdateInvoiceItemsRequest{Items: valid}, domain.ErrNotFound},
		{"items ausente", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{}, domain.ErrInvalidInput},
		{"items vacío", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: []dto.InvoiceItemRequest{}}, domain.ErrInvalidInput},
		{"cantidad cero", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: []dto.InvoiceItemRequest{{ProductName: "Panel", Rate: decPtr("1")}}}, domain.ErrInvalidInput},
		{"tarifa negativa", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: []dto.InvoiceItemRequest{{ProductName: "Panel", Rate: decPtr("-1"), Quantity: 1}}}, domain.ErrInvalidInput},
		{"nombre vacío", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: []dto.InvoiceItemRequest{{ProductName: "  ", Rate: decPtr("1"), Quantity: 1}}}, domain.ErrInvalidInput},
		{"tasa fuera de rango", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid, TaxRate: decPtr("-1")}, domain.ErrInvalidInput},
		{"total menor que subtotal", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid, GrandTotal: decPtr("0.5")}, domain.ErrInvalidInput},
		{"versión desactualizada", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid, Version: int64Ptr(7)}, domain.ErrConflict},
		{"tarifa ausente", employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: []dto.InvoiceItemRequest{{ProductName: "Panel", Quantity: 1}}}, domain.ErrInvalidInput},
		{"factura de otro empleado", otherEmployeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{Items: valid}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 0)
			f.seedInvoice()
			itemsBefore := append([]entity.InvoiceItem(nil), f.store.items["inv-1"]...)

			_, err := f.uc.ReconcileItems(context.Background(), tc.session, tc.id, tc.in)

			assert.ErrorIs(t, err, tc.want)
			assert.NotErrorIs(t, err, domain.ErrReconciliationFailed)
			assert.Equal(t, itemsBefore, f.store.items["inv-1"])
			assert.Equal(t, 1, f.observer.outcomes[billing.OutcomeRejected])
		})
	}
}

// Una factura pagada conserva sus líneas y su total.
func TestReconcileItems_FacturaPagadaEsEstadoInvalido(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()
	_, err := f.uc.PayInvoice(context.Background(), employeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	_, err = f.uc.ReconcileItems(context.Background(), adminSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("1"), Quantity: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.NotErrorIs(t, err, domain.ErrReconciliationFailed)
	assert.True(t, f.store.invoices["inv-1"].GrandTotal.Equal(dec("341")))
	assert.Len(t, f.store.items["inv-1"], 3)
	assert.Equal(t, 0, f.store.deleteCalls)
	assert.Equal(t, 1, f.observer.outcomes[billing.OutcomeRejected])
}

func TestReconcileItems_AdminEditaFacturaDeEmpleado(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.ReconcileItems(context.Background(), adminSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@solar.test", resp.Invoice.EmployeeEmail)
}

func TestReconcileItems_VersionVigenteAplica(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items:   []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 1}},
		Version: int64Ptr(1),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Invoice.Version)
}

func TestReconcileItems_PlazoVencidoEsTransitorio(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.seedInvoice()
	f.store.waitForCtx = true

	_, err := f.uc.ReconcileItems(context.Background(), employeeSession(), "inv-1", dto.UpdateInvoiceItemsRequest{
		Items: []dto.InvoiceItemRequest{{ProductName: "Panel 450W", Rate: decPtr("100"), Quantity: 1}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.ErrorIs(t, err, domain.ErrReconciliationFailed)
	assert.Len(t, f.store.items["inv-1"], 3)
}

// ──────────────────────────────────────────────────────────────────────────────
// PayInvoice
// ──────────────────────────────────────────────────────────────────────────────

func TestPayInvoice_PendingAPaid(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.PayInvoice(context.Background(), employeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Cash"})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
	assert.Equal(t, "Cash", resp.PaymentMethod)
	assert.Equal(t, entity.PaymentStatusPaid, f.store.invoices["inv-1"].PaymentStatus)
}

// Pagar dos veces: la segunda llamada se rechaza y no pisa el método registrado.
func TestPayInvoice_YaPagadaEsEstadoInvalido(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()
	_, err := f.uc.PayInvoice(context.Background(), employeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	_, err = f.uc.PayInvoice(context.Background(), adminSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Card"})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, "Cash", f.store.invoices["inv-1"].PaymentMethod)
}

func TestPayInvoice_Rechazos(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	_, err := f.uc.PayInvoice(context.Background(), employeeSession(), "inv-404", dto.PayInvoiceRequest{PaymentMethod: "Cash"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.PayInvoice(context.Background(), employeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.PayInvoice(context.Background(), employeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: strings.Repeat("x", 51)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.PayInvoice(context.Background(), nil, "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Cash"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.uc.PayInvoice(context.Background(), otherEmployeeSession(), "inv-1", dto.PayInvoiceRequest{PaymentMethod: "Cash"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, entity.PaymentStatusPending, f.store.invoices["inv-1"].PaymentStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetInvoice / ListInvoices
// ──────────────────────────────────────────────────────────────────────────────

func TestGetInvoice_DevuelveCabeceraYLineas(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	resp, err := f.uc.GetInvoice(context.Background(), employeeSession(), "inv-1")

	require.NoError(t, err)
	assert.Equal(t, "INV-1", resp.Invoice.InvoiceNumber)
	assert.Len(t, resp.Items, 3)
	assert.True(t, resp.Items[2].Subtotal.Equal(dec("60")))
}

func TestGetInvoice_SoloDuenoOAdmin(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()

	_, err := f.uc.GetInvoice(context.Background(), otherEmployeeSession(), "inv-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.GetInvoice(context.Background(), nil, "inv-1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	resp, err := f.uc.GetInvoice(context.Background(), adminSession(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", resp.Invoice.ID)
}

func TestGetInvoice_NoExiste(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.uc.GetInvoice(context.Background(), adminSession(), "inv-404")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListInvoices_FiltraPorMesYEstado(t *testing.T) {
	f := newFixture(t, 0)
	f.seedInvoice()
	f.store.seed(entity.Invoice{ID: "inv-2", PaymentStatus: entity.PaymentStatusPaid, GrandTotal: dec("100"), CreatedAt: fixedNow.AddDate(0, -1, 0)})
	f.store.seed(entity.Invoice{ID: "inv-3", PaymentStatus: entity.PaymentStatusPaid, GrandTotal: dec("59.5"), CreatedAt: fixedNow.Add(time.Hour)})

	all, err := f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{Month: "2026-03"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.True(t, all.TotalAmount.Equal(dec("400.5")))
	assert.Equal(t, 50, all.Page.Limit)

	paid, err := f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{Month: "2026-03", PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)
	require.Len(t, paid.Items, 1)
	assert.Equal(t, "inv-3", paid.Items[0].ID)
}

func TestListInvoices_ParametrosInvalidos(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{Month: "03-2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{PaymentStatus: "Refunded"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
