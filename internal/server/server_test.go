package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"condomanager/internal/access"
	"condomanager/internal/logger"
	"condomanager/internal/models"
	"condomanager/internal/report"
	"condomanager/internal/services"
	"condomanager/internal/session"
	"condomanager/internal/storage"
	"condomanager/internal/testutil"
	"condomanager/internal/validator"
)

const serviceKey = "test-service-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	router := NewRouter(Deps{
		UserService:         services.NewUserService(db),
		CondominiumService:  services.NewCondominiumService(db, files),
		ExpenseService:      services.NewExpenseService(db, files, access.ApprovalPolicy{}),
		NotificationService: services.NewNotificationService(db),
		ReportService:       services.NewReportService(db, report.NewPDFRenderer()),
		AuditService:        services.NewAuditService(db),
		Revoker:             session.NewMemoryRevoker(),
		CORSAllowedOrigins:  []string{"*"},
		ServiceAPIKey:       serviceKey,
	})
	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// login logs in and returns the access and refresh tokens.
func (app *testApp) login(t *testing.T, email string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, testutil.TestPassword)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")

	expect(t, rec, http.StatusOK)
	if parseJSON(t, rec)["status"] != "ok" {
		t.Error("expected status ok")
	}
}

func TestAuthFlow_LoginRefreshLogout(t *testing.T) {
	app := setupApp(t)
	testutil.CreateTestUserWithEmail(t, app.DB, "admin@condomanager.it", models.RoleAdmin)

	accessToken, refreshToken := app.login(t, "admin@condomanager.it")

	rec := app.request("GET", "/api/v1/profile", "", accessToken)
	expect(t, rec, http.StatusOK)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "admin@condomanager.it" {
		t.Errorf("unexpected email %v", user["email"])
	}

	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	expect(t, rec, http.StatusOK)
	newAccess := parseJSON(t, rec)["access_token"].(string)

	// The refresh token is rotated, so the old one no longer works.
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	expect(t, rec, http.StatusUnauthorized)

	rec = app.request("POST", "/api/v1/auth/logout", "", newAccess)
	expect(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	expect(t, rec, http.StatusUnauthorized)
}

func TestAuthFlow_LockoutAfterFailedLogins(t *testing.T) {
	app := setupApp(t)
	testutil.CreateTestUserWithEmail(t, app.DB, "gestore@condomanager.it", models.RoleManager)

	for i := 0; i < 5; i++ {
		rec := app.request("POST", "/api/v1/auth/login", `{"email":"gestore@condomanager.it","password":"sbagliata"}`, "")
		expect(t, rec, http.StatusUnauthorized)
	}

	rec := app.request("POST", "/api/v1/auth/login",
		fmt.Sprintf(`{"email":"gestore@condomanager.it","password":%q}`, testutil.TestPassword), "")
	expect(t, rec, http.StatusLocked)
}

func TestRoleGuards(t *testing.T) {
	app := setupApp(t)
	testutil.CreateTestUserWithEmail(t, app.DB, "gestore@condomanager.it", models.RoleManager)
	managerToken, _ := app.login(t, "gestore@condomanager.it")

	for _, route := range []struct{ method, path, body string }{
		{"GET", "/api/v1/users", ""},
		{"POST", "/api/v1/condominiums", `{"name":"X","address":"Via Roma 1","city":"Roma","province":"RM","postal_code":"00100"}`},
		{"GET", "/api/v1/admin/notifications", ""},
	} {
		rec := app.request(route.method, route.path, route.body, managerToken)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", route.method, route.path, rec.Code)
		}
	}

	rec := app.request("GET", "/api/v1/expenses", "", "")
	expect(t, rec, http.StatusUnauthorized)
}

func TestExpenseFlow_CreateApproveNotifyReport(t *testing.T) {
	app := setupApp(t)
	testutil.CreateTestUserWithEmail(t, app.DB, "admin@condomanager.it", models.RoleAdmin)
	adminToken, _ := app.login(t, "admin@condomanager.it")

	// Admin sets up a condominium and a manager.
	rec := app.request("POST", "/api/v1/condominiums",
		`{"name":"Condominio Aurora","address":"Via Roma 12","city":"Milano","province":"MI","postal_code":"20121"}`, adminToken)
	expect(t, rec, http.StatusCreated)
	condoID := parseJSON(t, rec)["condominium"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/users",
		`{"email":"gestore@condomanager.it","password":"password123","first_name":"Marco","last_name":"Bianchi","role":"manager"}`, adminToken)
	expect(t, rec, http.StatusCreated)
	managerID := parseJSON(t, rec)["user"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/condominiums/"+condoID+"/managers", fmt.Sprintf(`{"user_id":%q}`, managerID), adminToken)
	expect(t, rec, http.StatusNoContent)

	managerToken, _ := app.login(t, "gestore@condomanager.it")

	// Manager files an expense with a receipt.
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"condominium_id": condoID,
		"description":    "Riparazione ascensore",
		"amount":         "1200.50",
		"date":           "2025-03-12",
		"category":       "Manutenzione",
	} {
		_ = w.WriteField(k, v)
	}
	part, _ := w.CreateFormFile("file", "fattura.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 fattura"))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/v1/expenses", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+managerToken)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	expect(t, rec, http.StatusCreated)

	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	expenseID := expense["id"].(string)
	if expense["status"] != "pending" {
		t.Errorf("expected pending, got %v", expense["status"])
	}
	attachments := expense["attachments"].([]interface{})
	if len(attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(attachments))
	}
	fileID := attachments[0].(map[string]interface{})["id"].(string)

	rec = app.request("GET", "/api/v1/expenses/"+expenseID+"/attachments/"+fileID, "", managerToken)
	expect(t, rec, http.StatusOK)
	if rec.Body.String() != "%PDF-1.4 fattura" {
		t.Errorf("unexpected attachment body %q", rec.Body.String())
	}

	// Managers cannot approve under the default policy.
	rec = app.request("POST", "/api/v1/expenses/"+expenseID+"/approve", "", managerToken)
	expect(t, rec, http.StatusForbidden)

	// A stale version is refused.
	rec = app.request("POST", "/api/v1/expenses/"+expenseID+"/approve", `{"version":7}`, adminToken)
	expect(t, rec, http.StatusConflict)

	rec = app.request("POST", "/api/v1/expenses/"+expenseID+"/approve", `{"version":1}`, adminToken)
	expect(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["expense"].(map[string]interface{})["status"]; got != "approved" {
		t.Errorf("expected approved, got %v", got)
	}

	rec = app.request("POST", "/api/v1/expenses/"+expenseID+"/approve", "", adminToken)
	expect(t, rec, http.StatusConflict)

	// Approved expenses are frozen.
	rec = app.request("DELETE", "/api/v1/expenses/"+expenseID, "", managerToken)
	expect(t, rec, http.StatusConflict)

	// The creator was notified.
	rec = app.request("GET", "/api/v1/notifications/unread-count", "", managerToken)
	expect(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["unread"]; got != float64(1) {
		t.Fatalf("expected 1 unread notification, got %v", got)
	}

	rec = app.request("POST", "/api/v1/notifications/read-all", "", managerToken)
	expect(t, rec, http.StatusOK)

	rec = app.request("GET", "/api/v1/notifications/unread-count", "", managerToken)
	expect(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["unread"]; got != float64(0) {
		t.Errorf("expected 0 unread notifications, got %v", got)
	}

	// The summary counts approved totals.
	rec = app.request("GET", "/api/v1/condominiums/"+condoID+"/summary", "", managerToken)
	expect(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_approved"] != "1200.5" {
		t.Errorf("expected total 1200.5, got %v", summary["total_approved"])
	}

	// The report renders as a PDF.
	rec = app.request("GET", "/api/v1/condominiums/"+condoID+"/report?from_date=2025-03-01&to_date=2025-03-31", "", managerToken)
	expect(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected a PDF body")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	// A welcome mail and a decision mail are waiting in the outbox.
	var queued int64
	app.DB.Model(&models.OutboxMessage{}).Count(&queued)
	if queued != 2 {
		t.Errorf("expected 2 queued emails, got %d", queued)
	}
}

func TestExpenseFlow_ManagerScope(t *testing.T) {
	app := setupApp(t)
	manager := testutil.CreateTestUserWithEmail(t, app.DB, "gestore@condomanager.it", models.RoleManager)
	other := testutil.CreateTestUser(t, app.DB, models.RoleManager)
	mine := testutil.CreateTestCondominium(t, app.DB)
	foreign := testutil.CreateTestCondominium(t, app.DB)
	testutil.AssignManager(t, app.DB, manager, mine)
	testutil.AssignManager(t, app.DB, other, foreign)
	foreignExpense := testutil.CreateTestExpense(t, app.DB, foreign.ID, other.ID, "80.00")
	testutil.CreateTestExpense(t, app.DB, mine.ID, manager.ID, "45.00")

	token, _ := app.login(t, "gestore@condomanager.it")

	rec := app.request("GET", "/api/v1/expenses/"+foreignExpense.ID, "", token)
	expect(t, rec, http.StatusForbidden)

	rec = app.request("POST", "/api/v1/expenses",
		fmt.Sprintf(`{"condominium_id":%q,"description":"Pulizia","amount":"50.00","date":"2025-03-10","category":"Pulizia"}`, foreign.ID), token)
	expect(t, rec, http.StatusForbidden)

	rec = app.request("GET", "/api/v1/expenses", "", token)
	expect(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["total_items"]; got != float64(1) {
		t.Errorf("expected only own condominium expenses, got %v", got)
	}

	rec = app.request("GET", "/api/v1/condominiums", "", token)
	expect(t, rec, http.StatusOK)
	if got := parseJSON(t, rec)["total_items"]; got != float64(1) {
		t.Errorf("expected 1 visible condominium, got %v", got)
	}
}

func TestBroadcast_RequiresServiceKey(t *testing.T) {
	app := setupApp(t)
	manager := testutil.CreateTestUser(t, app.DB, models.RoleManager)
	condo := testutil.CreateTestCondominium(t, app.DB)
	testutil.AssignManager(t, app.DB, manager, condo)
	body := fmt.Sprintf(`{"condominium_id":%q,"title":"Rata in scadenza","message":"La rata scade il 30","type":"payment_due"}`, condo.ID)

	rec := app.request("POST", "/api/v1/internal/notifications/broadcast", body, "")
	expect(t, rec, http.StatusUnauthorized)

	req := httptest.NewRequest("POST", "/api/v1/internal/notifications/broadcast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", serviceKey)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	expect(t, rec, http.StatusCreated)
	if got := parseJSON(t, rec)["created"]; got != float64(1) {
		t.Errorf("expected 1 notification, got %v", got)
	}

	var audits int64
	app.DB.Model(&models.AuditLog{}).Where("action = ? AND user_id IS NULL", "BROADCAST_NOTIFICATION").Count(&audits)
	if audits != 1 {
		t.Errorf("expected an anonymous audit entry, got %d", audits)
	}
}
