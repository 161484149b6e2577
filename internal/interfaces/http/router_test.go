package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Solar-Invoicing-api/internal/application/dto"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/access"
	"github.com/jhoicas/Solar-Invoicing-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Solar-Invoicing-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stubs de casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type stubAuth struct {
	err error
}

func (s *stubAuth) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return &dto.LoginResponse{
		Success:   true,
		Role:      entity.RoleAdmin,
		User:      dto.UserResponse{ID: testUserID, Email: in.Email, Role: entity.RoleAdmin},
		ExpiresAt: time.Now().Add(time.Hour),
	}, "signed-token", nil
}

// stubInvoices responde con err si se fija; con owner aplica la regla de dueño real.
type stubInvoices struct {
	err         error
	owner       string
	lastList    dto.InvoiceListRequest
	lastSession *entity.Session
	lastID      string
	lastUpdate  dto.UpdateInvoiceItemsRequest
}

func (s *stubInvoices) CreateInvoice(_ context.Context, session *entity.Session, in dto.CreateInvoiceRequest) (*dto.InvoiceDetailResponse, error) {
	s.lastSession = session
	if s.err != nil {
		return nil, s.err
	}
	return &dto.InvoiceDetailResponse{Invoice: dto.InvoiceResponse{ID: "inv-1", EmployeeEmail: session.Email}}, nil
}

func (s *stubInvoices) GetInvoice(_ context.Context, session *entity.Session, id string) (*dto.InvoiceDetailResponse, error) {
	s.lastID = id
	if err := s.checkOwner(session); err != nil {
		return nil, err
	}
	return &dto.InvoiceDetailResponse{Invoice: dto.InvoiceResponse{ID: id}}, nil
}

func (s *stubInvoices) ListInvoices(_ context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	s.lastList = in
	return &dto.InvoiceListResponse{}, s.err
}

func (s *stubInvoices) ReconcileItems(_ context.Context, session *entity.Session, id string, in dto.UpdateInvoiceItemsRequest) (*dto.InvoiceDetailResponse, error) {
	s.lastSession, s.lastID, s.lastUpdate = session, id, in
	if err := s.checkOwner(session); err != nil {
		return nil, err
	}
	return &dto.InvoiceDetailResponse{Invoice: dto.InvoiceResponse{ID: id}}, nil
}

func (s *stubInvoices) PayInvoice(_ context.Context, session *entity.Session, id string, in dto.PayInvoiceRequest) (*dto.InvoiceResponse, error) {
	s.lastID = id
	if err := s.checkOwner(session); err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{ID: id, PaymentStatus: entity.PaymentStatusPaid, PaymentMethod: in.PaymentMethod}, nil
}

func (s *stubInvoices) checkOwner(session *entity.Session) error {
	if s.err != nil {
		return s.err
	}
	if s.owner == "" {
		return nil
	}
	return access.CheckOwner(session, s.owner)
}

type stubPDF struct {
	owner string
}

func (s stubPDF) DownloadInvoicePDF(_ context.Context, session *entity.Session, id string) ([]byte, string, error) {
	if id == "missing" {
		return nil, "", domain.ErrNotFound
	}
	if s.owner != "" {
		if err := access.CheckOwner(session, s.owner); err != nil {
			return nil, "", err
		}
	}
	return []byte("%PDF-1.4 fake"), "invoice_INV-1.pdf", nil
}

type stubCatalog struct {
	lastUpdateID string
}

func (s *stubCatalog) Create(_ context.Context, in dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	return &dto.ServiceResponse{ID: "svc-1", ProductName: in.ProductName}, nil
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*dto.ServiceResponse, error) {
	return &dto.ServiceResponse{ID: id}, nil
}

func (s *stubCatalog) Update(_ context.Context, id string, in dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	if id == "" {
		id = in.ID
	}
	s.lastUpdateID = id
	return &dto.ServiceResponse{ID: id}, nil
}

func (s *stubCatalog) List(context.Context, dto.ServiceListRequest) ([]dto.ServiceResponse, error) {
	return []dto.ServiceResponse{}, nil
}

type stubUsers struct{}

func (stubUsers) Create(_ context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: "u-2", Email: in.Email, Role: in.Role}, nil
}

func (stubUsers) List(context.Context) ([]dto.UserResponse, error) {
	return []dto.UserResponse{{ID: testUserID, Email: testEmail, Role: entity.RoleAdmin}}, nil
}

type stubReports struct{}

func (stubReports) GetSummary(_ context.Context, month string) (*dto.ReportSummaryDTO, error) {
	if month == "bad" {
		return nil, fmt.Errorf("%w: mes inválido", domain.ErrInvalidInput)
	}
	return &dto.ReportSummaryDTO{Month: month}, nil
}

type routerFixture struct {
	app      *fiber.App
	invoices *stubInvoices
	pdf      *stubPDF
	catalog  *stubCatalog
	auth     *stubAuth
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		app:      fiber.New(),
		invoices: &stubInvoices{},
		pdf:      &stubPDF{},
		catalog:  &stubCatalog{},
		auth:     &stubAuth{},
	}
	apphttp.Router(f.app, apphttp.RouterDeps{
		AuthUC:    f.auth,
		InvoiceUC: f.invoices,
		PDFUC:     f.pdf,
		ServiceUC: f.catalog,
		UserUC:    stubUsers{},
		ReportUC:  stubReports{},
		JWTSecret: testJWTSecret,
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, role, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Control de acceso por ruta
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_EmpleadoNoListaUsuarios(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/users", "employee", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)
}

func TestRouter_SinSesionNoListaUsuarios(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/users", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_AdminListaYCreaUsuarios(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/users", "admin", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/users", "admin", `{"email":"b@solar.test","password":"secreto123","role":"employee"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouter_ReporteSoloAdmin(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/reports/summary?month=2026-03", "employee", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/reports/summary?month=2026-03", "admin", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.ReportSummaryDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2026-03", out.Month)

	resp = f.do(t, http.MethodGet, "/api/reports/summary?month=bad", "admin", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_LoginDejaCookieHTTPOnly(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@solar.test","password":"secreto123"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == apphttp.SessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "el login debe emitir la cookie de sesión")
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuth_LoginCredencialesInvalidas(t *testing.T) {
	f := newRouterFixture()
	f.auth.err = domain.ErrUnauthorized
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@solar.test","password":"mala"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Code)
}

func TestAuth_VerifyDevuelveSesion(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/auth/verify", "employee", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, testUserID, out.ID)
	assert.Equal(t, testEmail, out.Email)
	assert.Equal(t, "employee", out.Role)
}

func TestAuth_LogoutBorraCookie(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodPost, "/api/auth/logout", "", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Empty(t, resp.Cookies()[0].Value)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoices_CrearUsaSesion(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodPost, "/api/invoices", "employee", `{"cart_items":[{"service_id":"svc-1","quantity":2}]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, f.invoices.lastSession)
	assert.Equal(t, testEmail, f.invoices.lastSession.Email)
}

func TestInvoices_CampoDesconocidoRechazado(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodPut, "/api/invoices/inv-1", "employee", `{"items":[],"totalAmount":10}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
	assert.Empty(t, f.invoices.lastID, "no debe llegar al caso de uso")
}

func TestInvoices_ReconciliarPorAmbasRutas(t *testing.T) {
	for _, path := range []string{"/api/invoices/inv-9", "/api/invoices/inv-9/update"} {
		f := newRouterFixture()
		resp := f.do(t, http.MethodPut, path, "admin", `{"items":[{"product_name":"Panel","rate":"100","quantity":1}],"version":3}`)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "inv-9", f.invoices.lastID, path)
		require.NotNil(t, f.invoices.lastUpdate.Version, path)
		assert.Equal(t, int64(3), *f.invoices.lastUpdate.Version, path)
	}
}

func TestInvoices_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"validación", fmt.Errorf("%w: quantity", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION", false},
		{"no existe", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", false},
		{"versión", fmt.Errorf("%w: versión 2", domain.ErrConflict), http.StatusConflict, "CONFLICT", false},
		{"reconciliación", fmt.Errorf("%w: insertar líneas: boom", domain.ErrReconciliationFailed), http.StatusInternalServerError, "RECONCILIATION_FAILED", true},
		{"timeout", fmt.Errorf("%w: %w", domain.ErrReconciliationFailed, domain.ErrTransient), http.StatusServiceUnavailable, "TRANSIENT", true},
		{"desconocido", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRouterFixture()
			f.invoices.err = tc.err
			resp := f.do(t, http.MethodPut, "/api/invoices/inv-1", "employee", `{"items":[{"product_name":"Panel","rate":"1","quantity":1}]}`)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.retryable, body.Retryable)
		})
	}
}

func TestInvoices_EmpleadoSoloVeSusFacturas(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/invoices?employee_email=otro@solar.test&status=Paid", "employee", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testEmail, f.invoices.lastList.EmployeeEmail)
	assert.Equal(t, "Paid", f.invoices.lastList.PaymentStatus)
}

func TestInvoices_AdminFiltraPorEmpleado(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/invoices?employee_email=otro@solar.test&month=2026-03", "admin", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "otro@solar.test", f.invoices.lastList.EmployeeEmail)
	assert.Equal(t, "2026-03", f.invoices.lastList.Month)
}

func TestInvoices_PagarYaPagadaEs409(t *testing.T) {
	f := newRouterFixture()
	f.invoices.err = domain.ErrInvalidState
	resp := f.do(t, http.MethodPut, "/api/invoices/pay/inv-1", "employee", `{"payment_method":"Cash"}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decodeError(t, resp).Code)
}

// Un empleado no opera sobre facturas de otro: pagar, editar, ver y descargar dan 403.
func TestInvoices_EmpleadoAjenoRecibe403(t *testing.T) {
	f := newRouterFixture()
	f.invoices.owner = "otro@solar.test"
	f.pdf.owner = "otro@solar.test"

	requests := []struct{ method, path, body string }{
		{http.MethodPut, "/api/invoices/pay/inv-1", `{"payment_method":"Cash"}`},
		{http.MethodPut, "/api/invoices/inv-1", `{"items":[{"product_name":"Panel","rate":"1","quantity":1}]}`},
		{http.MethodGet, "/api/invoices/inv-1", ""},
		{http.MethodGet, "/api/invoices/inv-1/pdf", ""},
	}
	for _, r := range requests {
		resp := f.do(t, r.method, r.path, "employee", r.body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, r.path)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code, r.path)
		resp.Body.Close()
	}

	resp := f.do(t, http.MethodPut, "/api/invoices/pay/inv-1", "admin", `{"payment_method":"Cash"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "un admin paga facturas de cualquier empleado")
}

func TestInvoices_DescargaPDF(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/invoices/inv-1/pdf", "employee", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice_INV-1.pdf")

	resp = f.do(t, http.MethodGet, "/api/invoices/missing/pdf", "employee", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestServices_ActualizarPorCuerpoYPorRuta(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodPut, "/api/services/update", "employee", `{"id":"svc-7","rate":"120"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "svc-7", f.catalog.lastUpdateID)

	resp = f.do(t, http.MethodPut, "/api/services/svc-8", "employee", `{"rate":"120"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "svc-8", f.catalog.lastUpdateID)
}

func TestServices_ListarRequiereSesion(t *testing.T) {
	f := newRouterFixture()
	resp := f.do(t, http.MethodGet, "/api/services", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/services", "employee", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
