// Package http exposes the ledger over a JSON API. Handlers stay thin:
// decode, call the engine, map errors to status codes.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/cache"
	applog "github.com/OmKumar-08/advanced-budget-app/internal/log"
	"github.com/OmKumar-08/advanced-budget-app/internal/middleware/trace"
	"github.com/OmKumar-08/advanced-budget-app/internal/services"
)

type Server struct {
	http.Server

	users        *services.UserService
	groups       *services.GroupService
	transactions *services.TransactionService
	settlements  *services.SettlementService
	recurring    *services.RecurringService
	loans        *services.LoanService
	invoices     *services.InvoiceService
	investments  *services.InvestmentService

	// balanceCache holds derived group balances between settlement writes.
	balanceCache *cache.LRUCache[map[int64]decimal.Decimal]
	cacheManager *cache.Manager
}

type Services struct {
	Users        *services.UserService
	Groups       *services.GroupService
	Transactions *services.TransactionService
	Settlements  *services.SettlementService
	Recurring    *services.RecurringService
	Loans        *services.LoanService
	Invoices     *services.InvoiceService
	Investments  *services.InvestmentService
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		users:        svc.Users,
		groups:       svc.Groups,
		transactions: svc.Transactions,
		settlements:  svc.Settlements,
		recurring:    svc.Recurring,
		loans:        svc.Loans,
		invoices:     svc.Invoices,
		investments:  svc.Investments,
		balanceCache: cache.NewLRUCache[map[int64]decimal.Decimal](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)

	mux.HandleFunc("POST /api/groups", s.handleCreateGroup)
	mux.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	mux.HandleFunc("PUT /api/groups/{id}", s.handleUpdateGroup)
	mux.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	mux.HandleFunc("POST /api/groups/{id}/members/{userID}", s.handleAddMember)
	mux.HandleFunc("DELETE /api/groups/{id}/members/{userID}", s.handleRemoveMember)
	mux.HandleFunc("GET /api/groups/{id}/balances", s.handleGroupBalances)
	mux.HandleFunc("POST /api/groups/{id}/expenses", s.handleGroupExpense)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("GET /api/users/{id}/transactions", s.handleUserTransactions)

	mux.HandleFunc("GET /api/settlements/{id}", s.handleGetSettlement)
	mux.HandleFunc("PUT /api/settlements/{id}/status", s.handleSettlementStatus)
	mux.HandleFunc("GET /api/users/{id}/settlements", s.handleUserSettlements)
	mux.HandleFunc("GET /api/transactions/{id}/settlements", s.handleTransactionSettlements)

	mux.HandleFunc("POST /api/schedules", s.handleCreateSchedule)
	mux.HandleFunc("GET /api/schedules/{id}", s.handleGetSchedule)
	mux.HandleFunc("PUT /api/schedules/{id}", s.handleUpdateSchedule)
	mux.HandleFunc("GET /api/users/{id}/schedules", s.handleUserSchedules)

	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("GET /api/loans/{id}", s.handleGetLoan)
	mux.HandleFunc("POST /api/loans/{id}/approve", s.handleApproveLoan)
	mux.HandleFunc("POST /api/loans/{id}/payments", s.handleLoanPayment)
	mux.HandleFunc("POST /api/loans/{id}/cancel", s.handleCancelLoan)
	mux.HandleFunc("GET /api/loans/{id}/payments", s.handleLoanPayments)
	mux.HandleFunc("GET /api/users/{id}/loans", s.handleUserLoans)

	mux.HandleFunc("POST /api/invoices", s.handleCreateInvoice)
	mux.HandleFunc("GET /api/invoices/{id}", s.handleGetInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}", s.handleUpdateInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/pay", s.handlePayInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/cancel", s.handleCancelInvoice)

	mux.HandleFunc("POST /api/investments", s.handleCreateInvestment)
	mux.HandleFunc("GET /api/investments/{id}", s.handleGetInvestment)
	mux.HandleFunc("PUT /api/investments/{id}/valuation", s.handleInvestmentValuation)
	mux.HandleFunc("POST /api/investments/{id}/close", s.handleCloseInvestment)
	mux.HandleFunc("GET /api/users/{id}/investments", s.handleUserInvestments)

	// Middleware chain, outermost first: request tracing, then a
	// request-scoped logger carrying the trace's request id.
	tracer := trace.NewMiddleware(clientIP)
	httpLogger := applog.New(applog.Config{Component: applog.ComponentHTTP})
	handler := applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(mux)
	handler = applog.Middleware(httpLogger)(handler)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops cache maintenance and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
