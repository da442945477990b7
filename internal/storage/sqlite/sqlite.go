// Package sqlite implements the storage interfaces on SQLite via
// database/sql and modernc.org/sqlite. Schema migrations are embedded and
// applied on open.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB // nil inside a transaction
	q  dbtx
}

// Open opens (creating if necessary) the database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Users() storage.UserStore               { return &userStore{s} }
func (s *Store) Groups() storage.GroupStore             { return &groupStore{s} }
func (s *Store) Transactions() storage.TransactionStore { return &transactionStore{s} }
func (s *Store) Settlements() storage.SettlementStore   { return &settlementStore{s} }
func (s *Store) Loans() storage.LoanStore               { return &loanStore{s} }
func (s *Store) Schedules() storage.ScheduleStore       { return &scheduleStore{s} }
func (s *Store) Invoices() storage.InvoiceStore         { return &invoiceStore{s} }
func (s *Store) Investments() storage.InvestmentStore   { return &investmentStore{s} }

// InTx runs fn inside one database transaction. Nested calls join the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Store{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- column codecs ---

// Times persist as unix seconds; zero means "not set".
func encTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func decTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

// Amounts persist as decimal strings to keep them exact.
func encDec(d decimal.Decimal) string { return d.String() }

func decDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func encBool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// --- users ---

type userStore struct{ s *Store }

func (u *userStore) Get(ctx context.Context, id int64) (*core.User, error) {
	row := u.s.q.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = ?`, id)
	var out core.User
	var created int64
	if err := row.Scan(&out.ID, &out.Username, &out.Email, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Entity: "user", ID: id}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	out.CreatedAt = decTime(created)
	return &out, nil
}

func (u *userStore) Save(ctx context.Context, usr *core.User) error {
	if usr.ID == 0 {
		res, err := u.s.q.ExecContext(ctx,
			`INSERT INTO users (username, email, created_at) VALUES (?, ?, ?)`,
			usr.Username, usr.Email, encTime(usr.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		usr.ID, err = res.LastInsertId()
		return err
	}
	_, err := u.s.q.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`,
		usr.Username, usr.Email, usr.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// --- groups ---

type groupStore struct{ s *Store }

func (g *groupStore) Get(ctx context.Context, id int64) (*core.Group, error) {
	row := g.s.q.QueryRowContext(ctx,
		`SELECT id, name, description, creator_id, created_at, updated_at
		 FROM groups WHERE id = ?`, id)
	var out core.Group
	var created, updated int64
	if err := row.Scan(&out.ID, &out.Name, &out.Description, &out.CreatorID, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Entity: "group", ID: id}
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	out.CreatedAt, out.UpdatedAt = decTime(created), decTime(updated)

	rows, err := g.s.q.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out.MemberIDs = append(out.MemberIDs, uid)
	}
	return &out, rows.Err()
}

func (g *groupStore) Save(ctx context.Context, grp *core.Group) error {
	if grp.ID == 0 {
		res, err := g.s.q.ExecContext(ctx,
			`INSERT INTO groups (name, description, creator_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			grp.Name, grp.Description, grp.CreatorID, encTime(grp.CreatedAt), encTime(grp.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		if grp.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	} else {
		_, err := g.s.q.ExecContext(ctx,
			`UPDATE groups SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			grp.Name, grp.Description, encTime(grp.UpdatedAt), grp.ID)
		if err != nil {
			return fmt.Errorf("update group: %w", err)
		}
	}
	for _, uid := range grp.MemberIDs {
		if err := g.AddMember(ctx, grp.ID, uid); err != nil {
			return err
		}
	}
	return nil
}

func (g *groupStore) Delete(ctx context.Context, id int64) error {
	if _, err := g.s.q.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("delete group members: %w", err)
	}
	res, err := g.s.q.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "group", ID: id}
	}
	return nil
}

func (g *groupStore) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := g.s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (g *groupStore) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := g.s.q.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

func (g *groupStore) ByMember(ctx context.Context, userID int64) ([]core.Group, error) {
	rows, err := g.s.q.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ? ORDER BY g.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("groups by member: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]core.Group, 0, len(ids))
	for _, id := range ids {
		grp, err := g.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *grp)
	}
	return out, nil
}

func (g *groupStore) HasUnsettledTransactions(ctx context.Context, groupID int64) (bool, error) {
	row := g.s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE group_id = ? AND is_settled = 0)`, groupID)
	var exists int64
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("unsettled transactions check: %w", err)
	}
	return exists == 1, nil
}
