package billing_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/repository"
)

// memStore almacenamiento en memoria con fallos inyectables por paso.
type memStore struct {
	mu       sync.Mutex
	invoices map[string]entity.Invoice
	items    map[string][]entity.InvoiceItem

	failCreate  []error // se consume uno por llamada
	failDelete  error
	failInsert  error
	failUpdate  error
	waitForCtx  bool // GetForUpdate bloquea hasta que venza el contexto
	deleteCalls int
}

func newMemStore() *memStore {
	return &memStore{
		invoices: map[string]entity.Invoice{},
		items:    map[string][]entity.InvoiceItem{},
	}
}

func (s *memStore) seed(inv entity.Invoice, items ...entity.InvoiceItem) {
	s.invoices[inv.ID] = inv
	s.items[inv.ID] = append([]entity.InvoiceItem(nil), items...)
}

func (s *memStore) snapshot() (map[string]entity.Invoice, map[string][]entity.InvoiceItem) {
	invs := make(map[string]entity.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		invs[k] = v
	}
	its := make(map[string][]entity.InvoiceItem, len(s.items))
	for k, v := range s.items {
		its[k] = append([]entity.InvoiceItem(nil), v...)
	}
	return invs, its
}

// fakeTx aplica fn sobre el store y restaura la copia previa si fn falla.
type fakeTx struct {
	store *memStore
}

func (f fakeTx) RunInvoice(ctx context.Context, fn func(repository.InvoiceRepository, repository.InvoiceItemRepository) error) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	invs, its := f.store.snapshot()
	if err := fn(memInvoiceRepo{f.store}, memItemRepo{f.store}); err != nil {
		f.store.invoices, f.store.items = invs, its
		return err
	}
	return nil
}

// memInvoiceRepo asume que el llamador ya tiene el lock (dentro de fakeTx) o que no hay concurrencia.
type memInvoiceRepo struct{ s *memStore }

func (r memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if len(r.s.failCreate) > 0 {
		err := r.s.failCreate[0]
		r.s.failCreate = r.s.failCreate[1:]
		if err != nil {
			return err
		}
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r memInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r memInvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	if r.s.waitForCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.GetByID(ctx, id)
}

func (r memInvoiceRepo) UpdateTotals(_ context.Context, inv *entity.Invoice) error {
	if r.s.failUpdate != nil {
		return r.s.failUpdate
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r memInvoiceRepo) UpdateStatus(_ context.Context, inv *entity.Invoice) error {
	cur := r.s.invoices[inv.ID]
	cur.PaymentStatus = inv.PaymentStatus
	cur.PaymentMethod = inv.PaymentMethod
	cur.UpdatedAt = inv.UpdatedAt
	r.s.invoices[inv.ID] = cur
	return nil
}

func (r memInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	out := make([]*entity.Invoice, 0)
	for _, inv := range r.s.invoices {
		inv := inv
		if f.PaymentStatus != "" && inv.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.EmployeeEmail != "" && inv.EmployeeEmail != f.EmployeeEmail {
			continue
		}
		if !f.From.IsZero() && inv.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !inv.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memItemRepo struct{ s *memStore }

func (r memItemRepo) ListByInvoice(_ context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	return append([]entity.InvoiceItem(nil), r.s.items[invoiceID]...), nil
}

func (r memItemRepo) DeleteByInvoice(_ context.Context, invoiceID string) (int64, error) {
	r.s.deleteCalls++
	if r.s.failDelete != nil {
		return 0, r.s.failDelete
	}
	n := int64(len(r.s.items[invoiceID]))
	delete(r.s.items, invoiceID)
	return n, nil
}

func (r memItemRepo) InsertMany(_ context.Context, items []entity.InvoiceItem) error {
	if r.s.failInsert != nil {
		return r.s.failInsert
	}
	for _, it := range items {
		r.s.items[it.InvoiceID] = append(r.s.items[it.InvoiceID], it)
	}
	return nil
}

// memServiceRepo catálogo en memoria.
type memServiceRepo struct {
	services map[string]*entity.Service
}

func (r *memServiceRepo) Create(_ context.Context, s *entity.Service) error {
	r.services[s.ID] = s
	return nil
}

func (r *memServiceRepo) GetByID(_ context.Context, id string) (*entity.Service, error) {
	return r.services[id], nil
}

func (r *memServiceRepo) Update(_ context.Context, s *entity.Service) error {
	r.services[s.ID] = s
	return nil
}

func (r *memServiceRepo) List(_ context.Context, _ repository.ServiceFilter) ([]*entity.Service, error) {
	out := make([]*entity.Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}
	return out, nil
}

// countingObserver cuenta resultados de reconciliación.
type countingObserver struct {
	outcomes map[string]int
}

func (o *countingObserver) ObserveReconciliation(outcome string) {
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}
