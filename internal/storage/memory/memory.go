// Package memory provides an in-memory Store used by tests and the
// "memory" data backend. Writers are serialized; InTx runs the callback
// under one lock so concurrent operations never observe partial effects.
// It does not roll back on error, which is acceptable for a test double.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

type Store struct {
	mu sync.RWMutex
	tx sync.Mutex

	nextID      int64
	users       map[int64]core.User
	groups      map[int64]core.Group
	txs         map[int64]core.Transaction
	settlements map[int64]core.Settlement
	loans       map[int64]core.Loan
	schedules   map[int64]core.RecurringSchedule
	invoices    map[int64]core.Invoice
	investments map[int64]core.Investment
}

func New() *Store {
	return &Store{
		users:       make(map[int64]core.User),
		groups:      make(map[int64]core.Group),
		txs:         make(map[int64]core.Transaction),
		settlements: make(map[int64]core.Settlement),
		loans:       make(map[int64]core.Loan),
		schedules:   make(map[int64]core.RecurringSchedule),
		invoices:    make(map[int64]core.Invoice),
		investments: make(map[int64]core.Investment),
	}
}

func (s *Store) Users() storage.UserStore               { return (*userStore)(s) }
func (s *Store) Groups() storage.GroupStore             { return (*groupStore)(s) }
func (s *Store) Transactions() storage.TransactionStore { return (*transactionStore)(s) }
func (s *Store) Settlements() storage.SettlementStore   { return (*settlementStore)(s) }
func (s *Store) Loans() storage.LoanStore               { return (*loanStore)(s) }
func (s *Store) Schedules() storage.ScheduleStore       { return (*scheduleStore)(s) }
func (s *Store) Invoices() storage.InvoiceStore         { return (*invoiceStore)(s) }
func (s *Store) Investments() storage.InvestmentStore   { return (*investmentStore)(s) }

func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	return fn(s)
}

func (s *Store) assignID() int64 {
	s.nextID++
	return s.nextID
}

// --- users ---

type userStore Store

func (s *userStore) Get(_ context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}

func (s *userStore) Save(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = (*Store)(s).assignID()
	}
	s.users[u.ID] = *u
	return nil
}

// --- groups ---

type groupStore Store

func (s *groupStore) Get(_ context.Context, id int64) (*core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "group", ID: id}
	}
	g.MemberIDs = append([]int64(nil), g.MemberIDs...)
	return &g, nil
}

func (s *groupStore) Save(_ context.Context, g *core.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == 0 {
		g.ID = (*Store)(s).assignID()
	}
	cp := *g
	cp.MemberIDs = append([]int64(nil), g.MemberIDs...)
	s.groups[g.ID] = cp
	return nil
}

func (s *groupStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return &core.NotFoundError{Entity: "group", ID: id}
	}
	delete(s.groups, id)
	return nil
}

func (s *groupStore) AddMember(_ context.Context, groupID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return &core.NotFoundError{Entity: "group", ID: groupID}
	}
	if !g.HasMember(userID) {
		g.MemberIDs = append(g.MemberIDs, userID)
		s.groups[groupID] = g
	}
	return nil
}

func (s *groupStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return &core.NotFoundError{Entity: "group", ID: groupID}
	}
	members := g.MemberIDs[:0:0]
	for _, id := range g.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	g.MemberIDs = members
	s.groups[groupID] = g
	return nil
}

func (s *groupStore) ByMember(_ context.Context, userID int64) ([]core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Group
	for _, g := range s.groups {
		if g.HasMember(userID) {
			cp := g
			cp.MemberIDs = append([]int64(nil), g.MemberIDs...)
			out = append(out, cp)
		}
	}
	sortByID(out, func(g core.Group) int64 { return g.ID })
	return out, nil
}

func (s *groupStore) HasUnsettledTransactions(_ context.Context, groupID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.txs {
		if t.GroupID == groupID && !t.Settled {
			return true, nil
		}
	}
	return false, nil
}

// --- transactions ---

type transactionStore Store

func (s *transactionStore) Get(_ context.Context, id int64) (*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return &t, nil
}

func (s *transactionStore) Save(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = (*Store)(s).assignID()
	}
	s.txs[t.ID] = *t
	return nil
}

func (s *transactionStore) filter(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if keep(t) {
			out = append(out, t)
		}
	}
	sortByID(out, func(t core.Transaction) int64 { return t.ID })
	return out
}

func (s *transactionStore) ByUser(_ context.Context, userID int64) ([]core.Transaction, error) {
	return s.filter(func(t core.Transaction) bool { return t.UserID == userID }), nil
}

func (s *transactionStore) ByUserAndType(_ context.Context, userID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return s.filter(func(t core.Transaction) bool { return t.UserID == userID && t.Type == typ }), nil
}

func (s *transactionStore) ByUserAndDateRange(_ context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	return s.filter(func(t core.Transaction) bool {
		return t.UserID == userID && !t.Date.Before(from) && !t.Date.After(to)
	}), nil
}

func (s *transactionStore) ByGroupAndType(_ context.Context, groupID int64, typ core.TransactionType) ([]core.Transaction, error) {
	return s.filter(func(t core.Transaction) bool { return t.GroupID == groupID && t.Type == typ }), nil
}

func (s *transactionStore) UnsettledGroup(_ context.Context) ([]core.Transaction, error) {
	return s.filter(func(t core.Transaction) bool { return t.GroupID != 0 && !t.Settled }), nil
}

// --- settlements ---

type settlementStore Store

func (s *settlementStore) Get(_ context.Context, id int64) (*core.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settlements[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "settlement", ID: id}
	}
	return &st, nil
}

func (s *settlementStore) Save(_ context.Context, st *core.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = (*Store)(s).assignID()
	}
	s.settlements[st.ID] = *st
	return nil
}

func (s *settlementStore) filter(keep func(core.Settlement) bool) []core.Settlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Settlement
	for _, st := range s.settlements {
		if keep(st) {
			out = append(out, st)
		}
	}
	sortByID(out, func(st core.Settlement) int64 { return st.ID })
	return out
}

func (s *settlementStore) ByTransaction(_ context.Context, transactionID int64) ([]core.Settlement, error) {
	return s.filter(func(st core.Settlement) bool { return st.TransactionID == transactionID }), nil
}

func (s *settlementStore) ByTransactions(_ context.Context, ids []int64) ([]core.Settlement, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.filter(func(st core.Settlement) bool { return want[st.TransactionID] }), nil
}

func (s *settlementStore) ByUser(_ context.Context, userID int64) ([]core.Settlement, error) {
	return s.filter(func(st core.Settlement) bool { return st.PayerID == userID || st.PayeeID == userID }), nil
}

func (s *settlementStore) ByStatus(_ context.Context, status core.SettlementStatus) ([]core.Settlement, error) {
	return s.filter(func(st core.Settlement) bool { return st.Status == status }), nil
}

func (s *settlementStore) PendingDueBefore(_ context.Context, now time.Time) ([]core.Settlement, error) {
	return s.filter(func(st core.Settlement) bool {
		return st.Status == core.SettlementPending && st.DueDate.Before(now)
	}), nil
}

func (s *settlementStore) NeedingReminder(_ context.Context, horizon time.Time) ([]core.Settlement, error) {
	return s.filter(func(st core.Settlement) bool {
		return st.Status == core.SettlementPending && !st.ReminderSent && !st.DueDate.After(horizon)
	}), nil
}

func (s *settlementStore) HasUnsettled(_ context.Context, transactionID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.settlements {
		if st.TransactionID == transactionID && !st.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

// --- loans ---

type loanStore Store

func (s *loanStore) Get(_ context.Context, id int64) (*core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "loan", ID: id}
	}
	return &l, nil
}

func (s *loanStore) Save(_ context.Context, l *core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = (*Store)(s).assignID()
	}
	s.loans[l.ID] = *l
	return nil
}

func (s *loanStore) ByUser(_ context.Context, userID int64) ([]core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Loan
	for _, l := range s.loans {
		if l.BorrowerID == userID || l.LenderID == userID {
			out = append(out, l)
		}
	}
	sortByID(out, func(l core.Loan) int64 { return l.ID })
	return out, nil
}

func (s *loanStore) ActiveOverdue(_ context.Context, now time.Time) ([]core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Loan
	for _, l := range s.loans {
		if l.Status == core.LoanActive && l.DueDate.Before(now) {
			out = append(out, l)
		}
	}
	sortByID(out, func(l core.Loan) int64 { return l.ID })
	return out, nil
}

func (s *loanStore) Payments(_ context.Context, loanID int64) ([]core.Transaction, error) {
	return (*transactionStore)(s).filter(func(t core.Transaction) bool {
		return t.LoanID == loanID && t.Type == core.TypeLoanPayment
	}), nil
}

// --- schedules ---

type scheduleStore Store

func (s *scheduleStore) Get(_ context.Context, id int64) (*core.RecurringSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "recurring schedule", ID: id}
	}
	return &sc, nil
}

func (s *scheduleStore) Save(_ context.Context, sc *core.RecurringSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == 0 {
		sc.ID = (*Store)(s).assignID()
	}
	s.schedules[sc.ID] = *sc
	return nil
}

func (s *scheduleStore) filter(keep func(core.RecurringSchedule) bool) []core.RecurringSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.RecurringSchedule
	for _, sc := range s.schedules {
		if keep(sc) {
			out = append(out, sc)
		}
	}
	sortByID(out, func(sc core.RecurringSchedule) int64 { return sc.ID })
	return out
}

func (s *scheduleStore) ByUser(_ context.Context, userID int64) ([]core.RecurringSchedule, error) {
	return s.filter(func(sc core.RecurringSchedule) bool { return sc.UserID == userID }), nil
}

func (s *scheduleStore) ActiveDue(_ context.Context, now time.Time) ([]core.RecurringSchedule, error) {
	return s.filter(func(sc core.RecurringSchedule) bool {
		return sc.Active && !sc.NextExecutionDate.After(now)
	}), nil
}

func (s *scheduleStore) ActiveNotifiable(_ context.Context) ([]core.RecurringSchedule, error) {
	return s.filter(func(sc core.RecurringSchedule) bool {
		return sc.Active && sc.NotificationEnabled
	}), nil
}

// --- invoices ---

type invoiceStore Store

func (s *invoiceStore) Get(_ context.Context, id int64) (*core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "invoice", ID: id}
	}
	return &inv, nil
}

func (s *invoiceStore) Save(_ context.Context, inv *core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = (*Store)(s).assignID()
	}
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *invoiceStore) filter(keep func(core.Invoice) bool) []core.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Invoice
	for _, inv := range s.invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	sortByID(out, func(inv core.Invoice) int64 { return inv.ID })
	return out
}

func (s *invoiceStore) ByTransaction(_ context.Context, transactionID int64) ([]core.Invoice, error) {
	return s.filter(func(inv core.Invoice) bool { return inv.TransactionID == transactionID }), nil
}

func (s *invoiceStore) ByStatus(_ context.Context, status core.InvoiceStatus) ([]core.Invoice, error) {
	return s.filter(func(inv core.Invoice) bool { return inv.Status == status }), nil
}

func (s *invoiceStore) PendingDueBefore(_ context.Context, now time.Time) ([]core.Invoice, error) {
	return s.filter(func(inv core.Invoice) bool {
		return inv.Status == core.InvoicePending && !inv.DueDate.IsZero() && inv.DueDate.Before(now)
	}), nil
}

func (s *invoiceStore) NeedingReminder(_ context.Context, horizon time.Time) ([]core.Invoice, error) {
	return s.filter(func(inv core.Invoice) bool {
		return inv.Status == core.InvoicePending && !inv.ReminderSent &&
			!inv.DueDate.IsZero() && !inv.DueDate.After(horizon)
	}), nil
}

// --- investments ---

type investmentStore Store

func (s *investmentStore) Get(_ context.Context, id int64) (*core.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.investments[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "investment", ID: id}
	}
	return &inv, nil
}

func (s *investmentStore) Save(_ context.Context, inv *core.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = (*Store)(s).assignID()
	}
	s.investments[inv.ID] = *inv
	return nil
}

func (s *investmentStore) ByUser(_ context.Context, userID int64) ([]core.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sortByID(out, func(inv core.Investment) int64 { return inv.ID })
	return out, nil
}

func (s *investmentStore) ActiveMatured(_ context.Context, now time.Time) ([]core.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Investment
	for _, inv := range s.investments {
		if inv.Status == core.InvestmentActive && !inv.MaturityDate.IsZero() && inv.MaturityDate.Before(now) {
			out = append(out, inv)
		}
	}
	sortByID(out, func(inv core.Investment) int64 { return inv.ID })
	return out, nil
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
