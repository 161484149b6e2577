package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/application/storetimeout"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/invoice"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
	"github.com/jhoicas/Solar-Invoicing-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	// numberAttempts reintentos ante colisión del número INV-<millis> entre facturas simultáneas.
	numberAttempts = 3
)

// Options parámetros opcionales del caso de uso.
type Options struct {
	DefaultTaxRate decimal.Decimal
	StoreTimeout   time.Duration // límite de cada unidad de trabajo contra la base; 0 = sin límite
	Observer       ReconciliationObserver
	Logger         *logger.Logger
	Clock          func() time.Time
}

// InvoiceUseCase casos de uso del ciclo de vida de la factura.
type InvoiceUseCase struct {
	txRunner       InvoiceTxRunner
	invoiceRepo    repository.InvoiceRepository
	itemRepo       repository.InvoiceItemRepository
	serviceRepo    repository.ServiceRepository
	defaultTaxRate decimal.Decimal
	store          storetimeout.Limit
	observer       ReconciliationObserver
	log            *logger.Logger
	now            func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner InvoiceTxRunner,
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	serviceRepo repository.ServiceRepository,
	opts Options,
) *InvoiceUseCase {
	uc := &InvoiceUseCase{
		txRunner:       txRunner,
		invoiceRepo:    invoiceRepo,
		itemRepo:       itemRepo,
		serviceRepo:    serviceRepo,
		defaultTaxRate: opts.DefaultTaxRate,
		store:          storetimeout.Limit(opts.StoreTimeout),
		observer:       opts.Observer,
		log:            opts.Logger,
		now:            opts.Clock,
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// CreateInvoice crea la factura y sus líneas en una sola transacción.
// Las líneas con service_id copian nombre y tarifa del catálogo; el resto son líneas libres.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, session *entity.Session, in dto.CreateInvoiceRequest) (*dto.InvoiceDetailResponse, error) {
	session, err := access.Check(session, entity.RoleAdmin, entity.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if len(in.CartItems) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}

	owner := strings.TrimSpace(in.EmployeeEmail)
	if owner == "" || strings.EqualFold(owner, session.Email) {
		owner = session.Email
	} else if session.Role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: solo un admin puede facturar a nombre de otro empleado", domain.ErrForbidden)
	}

	rate := uc.defaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	if err := invoice.ValidateTaxRate(rate); err != nil {
		return nil, err
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	now := uc.now()
	invoiceID := uuid.New().String()
	items := make([]entity.InvoiceItem, 0, len(in.CartItems))
	for i, c := range in.CartItems {
		item, err := uc.cartLine(ctx, i, c)
		if err != nil {
			return nil, storetimeout.Error(ctx, err)
		}
		item.ID = uuid.New().String()
		item.InvoiceID = invoiceID
		item.CreatedAt = now
		items = append(items, item)
	}

	totals, err := invoice.ComputeTotals(items, rate)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		ID:            invoiceID,
		PaymentStatus: entity.PaymentStatusPending,
		PaymentMethod: entity.PaymentMethodNone,
		Subtotal:      totals.Subtotal,
		TaxRate:       totals.TaxRate,
		TaxAmount:     totals.TaxAmount,
		GrandTotal:    totals.GrandTotal,
		EmployeeEmail: owner,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		inv.Number = fmt.Sprintf("INV-%d", now.UnixMilli()+int64(attempt))
		err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
			if err := invoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			return itemRepo.InsertMany(ctx, items)
		})
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("employee", owner).
		Int("items", len(items)).
		Msg("factura creada")
	return toDetailResponse(inv, items), nil
}

// cartLine valida una línea del carrito y la convierte en línea de factura (sin ids).
func (uc *InvoiceUseCase) cartLine(ctx context.Context, index int, c dto.CartItemRequest) (entity.InvoiceItem, error) {
	if c.Quantity < 0 {
		return entity.InvoiceItem{}, fmt.Errorf("%w: cart_items[%d].quantity no puede ser negativa", domain.ErrInvalidInput, index)
	}
	qty := invoice.NormalizeQuantity(c.Quantity)

	serviceID := strings.TrimSpace(c.ServiceID)
	if serviceID == "" {
		name := strings.TrimSpace(c.ProductName)
		if name == "" {
			return entity.InvoiceItem{}, fmt.Errorf("%w: cart_items[%d].product_name es obligatorio", domain.ErrInvalidInput, index)
		}
		if c.Rate == nil || c.Rate.IsNegative() {
			return entity.InvoiceItem{}, fmt.Errorf("%w: cart_items[%d].rate debe ser >= 0", domain.ErrInvalidInput, index)
		}
		return entity.InvoiceItem{ProductName: name, Rate: *c.Rate, Quantity: qty}, nil
	}

	svc, err := uc.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return entity.InvoiceItem{}, err
	}
	if svc == nil {
		return entity.InvoiceItem{}, fmt.Errorf("%w: servicio %s", domain.ErrNotFound, serviceID)
	}
	if !svc.Available() || (svc.Quantity != nil && qty > *svc.Quantity) {
		return entity.InvoiceItem{}, fmt.Errorf("%w: %s", domain.ErrOutOfStock, svc.ProductName)
	}
	return entity.InvoiceItem{
		ServiceID:   svc.ID,
		ProductName: svc.ProductName,
		Rate:        svc.Rate,
		Quantity:    qty,
	}, nil
}

// GetInvoice obtiene una factura por ID con sus líneas. Un empleado solo ve las suyas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, session *entity.Session, id string) (*dto.InvoiceDetailResponse, error) {
	session, err := access.Check(session)
	if err != nil {
		return nil, err
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.CheckOwner(session, inv.EmployeeEmail); err != nil {
		return nil, err
	}
	items, err := uc.itemRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	if err := invoice.VerifyTotals(inv, items); err != nil {
		uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("totales de cabecera desalineados con las líneas")
	}
	return toDetailResponse(inv, items), nil
}

// ListInvoices lista facturas (más recientes primero) con filtros opcionales de mes,
// estado y empleado. TotalAmount es la suma de los totales de la página.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	filter := repository.InvoiceFilter{
		PaymentStatus: strings.TrimSpace(in.PaymentStatus),
		EmployeeEmail: strings.TrimSpace(in.EmployeeEmail),
		Limit:         in.Limit,
		Offset:        in.Offset,
	}
	if filter.PaymentStatus != "" && filter.PaymentStatus != entity.PaymentStatusPending && filter.PaymentStatus != entity.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: status debe ser %s o %s", domain.ErrInvalidInput, entity.PaymentStatusPending, entity.PaymentStatusPaid)
	}
	if in.Month != "" {
		from, err := ParseMonth(in.Month)
		if err != nil {
			return nil, err
		}
		filter.From = from
		filter.To = from.AddDate(0, 1, 0)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	ctx, cancel := uc.store.Context(ctx)
	defer cancel()

	list, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, storetimeout.Error(ctx, err)
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: len(list)},
	}
	sum := decimal.Zero
	for _, inv := range list {
		out.Items = append(out.Items, toInvoiceResponse(inv))
		sum = sum.Add(inv.GrandTotal)
	}
	out.TotalAmount = sum.Round(moneyPlaces)
	return out, nil
}

// ParseMonth interpreta "YYYY-MM" y devuelve el primer instante del mes en UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month debe tener formato YYYY-MM", domain.ErrInvalidInput)
	}
	return t.UTC(), nil
}
