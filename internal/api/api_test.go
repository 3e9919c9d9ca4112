package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/audit"
	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/ledger"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/pricing"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

const testJWTSecret = "test-secret"

func newTestRouter(t *testing.T, opts ...rental.Option) (*httptest.Server, *store.Store) {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	rec := audit.StoreRecorder{Store: s}
	l := ledger.New(s, rec)
	svc := rental.NewService(s, l, rec, rental.DefaultPolicy(), pricing.DefaultTariff(), opts...)

	server := httptest.NewServer(NewRouter(Deps{Store: s, Ledger: l, Rentals: svc, JWTSecret: testJWTSecret}))
	t.Cleanup(server.Close)
	return server, s
}

func setupTestServer(t *testing.T, opts ...rental.Option) (*httptest.Server, string) {
	t.Helper()
	server, s := newTestRouter(t, opts...)

	// Create admin user.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := s.CreateUser(context.Background(), "admin", string(hash), model.RoleAdmin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var login loginResponse
	json.NewDecoder(resp.Body).Decode(&login)
	if login.Token == "" {
		t.Fatal("empty token from login")
	}

	return server, login.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated request, checks the status and decodes the
// response into out when it is not nil.
func do(t *testing.T, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var msg map[string]string
		json.NewDecoder(resp.Body).Decode(&msg)
		t.Fatalf("%s %s: expected %d, got %d (%s)", method, url, wantStatus, resp.StatusCode, msg["error"])
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
}

func createCatalogue(t *testing.T, url, token string, stock int) (customerID, costumeID int64) {
	t.Helper()

	var customer customerResponse
	do(t, "POST", url+"/api/customers", token, map[string]any{
		"name":  "Dewi",
		"phone": "081234567890",
	}, http.StatusCreated, &customer)

	var costume model.Costume
	do(t, "POST", url+"/api/costumes", token, map[string]any{
		"name":        "Kebaya Bali",
		"origin":      "Bali",
		"size":        "M",
		"unit_price":  "75000",
		"total_stock": stock,
	}, http.StatusCreated, &costume)

	return customer.ID, costume.ID
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Unknown user looks the same.
	body, _ = json.Marshal(map[string]string{"username": "nobody", "password": "password"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMeEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	var me model.User
	do(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusOK, &me)
	if me.Username != "admin" || me.Role != model.RoleAdmin {
		t.Errorf("unexpected user: %+v", me)
	}
}

func TestRentalAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)
	customerID, costumeID := createCatalogue(t, server.URL, token, 3)

	var created model.Rental
	do(t, "POST", server.URL+"/api/rentals", token, map[string]any{
		"customer_id":      customerID,
		"costume_id":       costumeID,
		"quantity":         2,
		"start_date":       "2025-01-07",
		"scheduled_return": "2025-01-10",
		"shipping_method":  "JNE",
	}, http.StatusCreated, &created)

	if created.Status != model.RentalStatusPending {
		t.Errorf("expected pending, got %s", created.Status)
	}
	// 75000 * 2 units * 3 days + 15000 shipping.
	if !created.TotalCost.Equal(decimal.NewFromInt(465000)) {
		t.Errorf("expected total 465000, got %s", created.TotalCost)
	}

	var costume model.Costume
	do(t, "GET", fmt.Sprintf("%s/api/costumes/%d", server.URL, costumeID), token, nil, http.StatusOK, &costume)
	if costume.AvailableStock != 1 {
		t.Errorf("expected 1 available after reservation, got %d", costume.AvailableStock)
	}

	rentalURL := fmt.Sprintf("%s/api/rentals/%d", server.URL, created.ID)
	do(t, "POST", rentalURL+"/confirm", token, nil, http.StatusOK, nil)

	var returned model.Rental
	do(t, "POST", rentalURL+"/return", token, map[string]any{
		"actual_return":  "2025-01-13",
		"daily_late_fee": "5000",
	}, http.StatusOK, &returned)

	if returned.Status != model.RentalStatusReturned {
		t.Errorf("expected returned, got %s", returned.Status)
	}
	if !returned.LateFee.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("expected late fee 30000, got %s", returned.LateFee)
	}

	// A second return is refused and does not release stock again.
	do(t, "POST", rentalURL+"/return", token, map[string]any{"actual_return": "2025-01-13"},
		http.StatusConflict, nil)

	do(t, "GET", fmt.Sprintf("%s/api/costumes/%d", server.URL, costumeID), token, nil, http.StatusOK, &costume)
	if costume.AvailableStock != 3 {
		t.Errorf("expected 3 available after return, got %d", costume.AvailableStock)
	}

	var customer customerResponse
	do(t, "GET", fmt.Sprintf("%s/api/customers/%d", server.URL, customerID), token, nil, http.StatusOK, &customer)
	if customer.TotalRentals != 1 {
		t.Errorf("expected 1 completed rental, got %d", customer.TotalRentals)
	}

	var events []model.AuditEvent
	do(t, "GET", fmt.Sprintf("%s/api/audit?entity=rental&entity_id=%d", server.URL, created.ID), token, nil,
		http.StatusOK, &events)
	if len(events) != 3 {
		t.Errorf("expected 3 rental audit events, got %d", len(events))
	}
}

func TestReturnDefaultsToServiceClock(t *testing.T) {
	today := time.Date(2025, 1, 13, 16, 30, 0, 0, time.UTC)
	server, token := setupTestServer(t, rental.WithClock(func() time.Time { return today }))
	customerID, costumeID := createCatalogue(t, server.URL, token, 3)

	var created model.Rental
	do(t, "POST", server.URL+"/api/rentals", token, map[string]any{
		"customer_id":      customerID,
		"costume_id":       costumeID,
		"quantity":         2,
		"start_date":       "2025-01-07",
		"scheduled_return": "2025-01-10",
	}, http.StatusCreated, &created)

	rentalURL := fmt.Sprintf("%s/api/rentals/%d", server.URL, created.ID)
	do(t, "POST", rentalURL+"/confirm", token, nil, http.StatusOK, nil)

	var overdue []model.Rental
	do(t, "GET", server.URL+"/api/rentals/overdue", token, nil, http.StatusOK, &overdue)
	if len(overdue) != 1 || overdue[0].ID != created.ID {
		t.Fatalf("expected rental %d to be overdue, got %+v", created.ID, overdue)
	}

	// No body: returned today on the service clock, at the policy rate.
	var returned model.Rental
	do(t, "POST", rentalURL+"/return", token, nil, http.StatusOK, &returned)

	if returned.ActualReturn == nil || !returned.ActualReturn.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected actual return 2025-01-13, got %v", returned.ActualReturn)
	}
	if !returned.LateFee.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("expected late fee 30000, got %s", returned.LateFee)
	}
}

func TestCostumeSizeAndCustomerTier(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/costumes", token, map[string]any{
		"name":        "Baju Bodo",
		"size":        "XXL",
		"unit_price":  "60000",
		"total_stock": 2,
	}, http.StatusBadRequest, nil)

	var customer customerResponse
	do(t, "POST", server.URL+"/api/customers", token, map[string]any{"name": "Ayu"}, http.StatusCreated, &customer)
	if customer.Tier != model.TierBronze || customer.TierLabel != "Bronze" {
		t.Errorf("expected Bronze tier, got %s (%q)", customer.Tier, customer.TierLabel)
	}
}

func TestRentalInsufficientStock(t *testing.T) {
	server, token := setupTestServer(t)
	customerID, costumeID := createCatalogue(t, server.URL, token, 3)

	req := map[string]any{
		"customer_id":      customerID,
		"costume_id":       costumeID,
		"quantity":         2,
		"start_date":       "2025-01-07",
		"scheduled_return": "2025-01-10",
	}
	var first model.Rental
	do(t, "POST", server.URL+"/api/rentals", token, req, http.StatusCreated, &first)
	do(t, "POST", server.URL+"/api/rentals", token, req, http.StatusConflict, nil)

	do(t, "POST", fmt.Sprintf("%s/api/rentals/%d/cancel", server.URL, first.ID), token, nil, http.StatusOK, nil)

	var costume model.Costume
	do(t, "GET", fmt.Sprintf("%s/api/costumes/%d", server.URL, costumeID), token, nil, http.StatusOK, &costume)
	if costume.AvailableStock != 3 {
		t.Errorf("expected 3 available after cancel, got %d", costume.AvailableStock)
	}
}

func TestRentalValidation(t *testing.T) {
	server, token := setupTestServer(t)
	customerID, costumeID := createCatalogue(t, server.URL, token, 3)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing quantity", map[string]any{
			"customer_id": customerID, "costume_id": costumeID,
			"start_date": "2025-01-07", "scheduled_return": "2025-01-10",
		}},
		{"bad date", map[string]any{
			"customer_id": customerID, "costume_id": costumeID, "quantity": 1,
			"start_date": "07/01/2025", "scheduled_return": "2025-01-10",
		}},
		{"return before start", map[string]any{
			"customer_id": customerID, "costume_id": costumeID, "quantity": 1,
			"start_date": "2025-01-10", "scheduled_return": "2025-01-07",
		}},
		{"unknown shipping", map[string]any{
			"customer_id": customerID, "costume_id": costumeID, "quantity": 1,
			"start_date": "2025-01-07", "scheduled_return": "2025-01-10", "shipping_method": "Pigeon",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			do(t, "POST", server.URL+"/api/rentals", token, tt.body, http.StatusBadRequest, nil)
		})
	}

	do(t, "GET", server.URL+"/api/rentals/999", token, nil, http.StatusNotFound, nil)
}

func TestCustomerValidation(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/customers", token, map[string]any{
		"name":  "Dewi",
		"phone": "12345",
	}, http.StatusBadRequest, nil)

	do(t, "POST", server.URL+"/api/customers", token, map[string]any{
		"name":  "Dewi",
		"email": "not-an-email",
	}, http.StatusBadRequest, nil)
}

func TestIneligibleCustomer(t *testing.T) {
	server, token := setupTestServer(t)
	customerID, costumeID := createCatalogue(t, server.URL, token, 3)

	do(t, "PUT", fmt.Sprintf("%s/api/customers/%d", server.URL, customerID), token, map[string]any{
		"name":   "Dewi",
		"status": model.CustomerStatusBlacklisted,
	}, http.StatusOK, nil)

	do(t, "POST", server.URL+"/api/rentals", token, map[string]any{
		"customer_id":      customerID,
		"costume_id":       costumeID,
		"quantity":         1,
		"start_date":       "2025-01-07",
		"scheduled_return": "2025-01-10",
	}, http.StatusUnprocessableEntity, nil)
}

func TestShippingMethods(t *testing.T) {
	server, token := setupTestServer(t)

	var methods []shippingOption
	do(t, "GET", server.URL+"/api/shipping", token, nil, http.StatusOK, &methods)
	if len(methods) != len(pricing.DefaultTariff()) {
		t.Errorf("expected %d shipping methods, got %d", len(pricing.DefaultTariff()), len(methods))
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	do(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK, nil)
	do(t, "GET", server.URL+"/api/costumes", token, nil, http.StatusUnauthorized, nil)
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := newTestRouter(t)

	resp, _ := http.Get(server.URL + "/api/costumes")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, s := newTestRouter(t)

	// Create a regular user.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user, err := s.CreateUser(context.Background(), "user1", string(hash), model.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	userToken, _ := auth.GenerateToken(testJWTSecret, user)

	// Regular user should not be able to create costumes (manager+ required).
	do(t, "POST", server.URL+"/api/costumes", userToken, map[string]any{
		"name": "Test",
		"size": "M",
	}, http.StatusForbidden, nil)

	// Regular user should not access /api/users.
	do(t, "GET", server.URL+"/api/users", userToken, nil, http.StatusForbidden, nil)

	// Nor the audit log.
	do(t, "GET", server.URL+"/api/audit", userToken, nil, http.StatusForbidden, nil)

	// But may list rentals.
	do(t, "GET", server.URL+"/api/rentals", userToken, nil, http.StatusOK, nil)
}
