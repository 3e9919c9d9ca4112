package api

import (
	"net/http"

	"github.com/erazemk/izposoja/internal/ledger"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/rental"
	"github.com/erazemk/izposoja/internal/store"
)

// Deps are the services the API is built on.
type Deps struct {
	Store     *store.Store
	Ledger    *ledger.Ledger
	Rentals   *rental.Service
	JWTSecret string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Store: d.Store, JWTSecret: d.JWTSecret}
	usersHandler := &UsersHandler{Store: d.Store}
	costumesHandler := &CostumesHandler{Store: d.Store, Ledger: d.Ledger, Rentals: d.Rentals}
	customersHandler := &CustomersHandler{Store: d.Store, Rentals: d.Rentals}
	rentalsHandler := &RentalsHandler{Rentals: d.Rentals}
	auditHandler := &AuditHandler{Store: d.Store}

	authMW := AuthMiddleware(d.JWTSecret, d.Store)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Costumes: read (all roles), write (manager+).
	mux.Handle("GET /api/costumes", authMW(http.HandlerFunc(costumesHandler.List)))
	mux.Handle("POST /api/costumes", authMW(requireManager(http.HandlerFunc(costumesHandler.Create))))
	mux.Handle("GET /api/costumes/{id}", authMW(http.HandlerFunc(costumesHandler.Get)))
	mux.Handle("PUT /api/costumes/{id}", authMW(requireManager(http.HandlerFunc(costumesHandler.Update))))
	mux.Handle("PUT /api/costumes/{id}/stock", authMW(requireManager(http.HandlerFunc(costumesHandler.SetStock))))
	mux.Handle("DELETE /api/costumes/{id}", authMW(requireManager(http.HandlerFunc(costumesHandler.Delete))))
	mux.Handle("PUT /api/costumes/{id}/image", authMW(requireManager(http.HandlerFunc(costumesHandler.UploadImage))))
	mux.Handle("GET /api/costumes/{id}/image", authMW(http.HandlerFunc(costumesHandler.GetImage)))
	mux.Handle("GET /api/costumes/{id}/rentals", authMW(http.HandlerFunc(costumesHandler.RentalHistory)))

	// Customers: read and create (all roles), edit and delete (manager+).
	mux.Handle("GET /api/customers", authMW(http.HandlerFunc(customersHandler.List)))
	mux.Handle("POST /api/customers", authMW(http.HandlerFunc(customersHandler.Create)))
	mux.Handle("GET /api/customers/{id}", authMW(http.HandlerFunc(customersHandler.Get)))
	mux.Handle("PUT /api/customers/{id}", authMW(requireManager(http.HandlerFunc(customersHandler.Update))))
	mux.Handle("DELETE /api/customers/{id}", authMW(requireManager(http.HandlerFunc(customersHandler.Delete))))
	mux.Handle("GET /api/customers/{id}/rentals", authMW(http.HandlerFunc(customersHandler.RentalHistory)))

	// Rentals (all roles).
	mux.Handle("GET /api/rentals", authMW(http.HandlerFunc(rentalsHandler.List)))
	mux.Handle("POST /api/rentals", authMW(http.HandlerFunc(rentalsHandler.Create)))
	mux.Handle("GET /api/rentals/overdue", authMW(http.HandlerFunc(rentalsHandler.Overdue)))
	mux.Handle("GET /api/rentals/{id}", authMW(http.HandlerFunc(rentalsHandler.Get)))
	mux.Handle("POST /api/rentals/{id}/confirm", authMW(http.HandlerFunc(rentalsHandler.Confirm)))
	mux.Handle("POST /api/rentals/{id}/cancel", authMW(http.HandlerFunc(rentalsHandler.Cancel)))
	mux.Handle("POST /api/rentals/{id}/return", authMW(http.HandlerFunc(rentalsHandler.Return)))
	mux.Handle("PUT /api/rentals/{id}/shipping", authMW(http.HandlerFunc(rentalsHandler.SetShipping)))
	mux.Handle("GET /api/shipping", authMW(http.HandlerFunc(rentalsHandler.ShippingMethods)))

	// Audit log (manager+).
	mux.Handle("GET /api/audit", authMW(requireManager(http.HandlerFunc(auditHandler.List))))

	return mux
}
