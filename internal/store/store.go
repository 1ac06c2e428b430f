// Package store is the node's single-writer, transactional account store.
// Every exported primitive either runs against the pool directly (for
// standalone reads) or against a caller-supplied transaction obtained from
// WithTx, so that handlers can compose begin -> read -> validate -> mutate
// -> commit as one atomic unit, per spec.md §4.A.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"p2pbank/internal/config"
	"p2pbank/internal/money"
)

// Sentinel errors surfaced by store primitives. Handlers translate these
// into the external DomainError messages; they never leak past the
// dispatcher.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrLimitReached    = errors.New("account number limit reached")
)

// TxKind is the ledger entry classification.
type TxKind string

const (
	KindInitialDeposit TxKind = "INITIAL_DEPOSIT"
	KindDeposit        TxKind = "DEPOSIT"
	KindWithdrawal     TxKind = "WITHDRAWAL"
)

// Account is a snapshot of one accounts row.
type Account struct {
	Number    int
	BankCode  string
	Balance   money.Cents
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KnownBank is a snapshot of one known_banks row.
type KnownBank struct {
	BankCode string
	IP       string
	Port     int
	LastSeen time.Time
	IsActive bool
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// primitive below run standalone or inside a caller's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and bootstraps the schema if absent.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for read-only aggregate queries that do
// not need transactional isolation (SumBalances, CountAccounts).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// WithTx runs fn inside a single transaction: any returned error rolls back,
// a nil return commits. This is the one place the store opens a Begin/Commit
// pair; handlers never manage transactions directly.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) bootstrap(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_number INTEGER PRIMARY KEY,
			bank_code      TEXT NOT NULL,
			balance_cents  BIGINT NOT NULL DEFAULT 0,
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (account_number, bank_code)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id             BIGSERIAL PRIMARY KEY,
			correlation_id UUID NOT NULL,
			account_number INTEGER NOT NULL,
			bank_code      TEXT NOT NULL,
			amount_cents   BIGINT NOT NULL,
			kind           TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS known_banks (
			bank_code  TEXT PRIMARY KEY,
			ip_address TEXT NOT NULL,
			port       INTEGER NOT NULL,
			last_seen  TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active  BOOLEAN NOT NULL DEFAULT TRUE
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NextAccountNumber returns max(account_number)+1, or 10001 if the table is
// empty. Must be called inside the same transaction as the following insert
// (spec.md §4.A) to avoid two concurrent creations reusing a number.
func NextAccountNumber(ctx context.Context, q Querier) (int, error) {
	var maxNumber *int
	row := q.QueryRow(ctx, `SELECT MAX(account_number) FROM accounts`)
	if err := row.Scan(&maxNumber); err != nil {
		return 0, err
	}
	if maxNumber == nil {
		return 10001, nil
	}
	return *maxNumber + 1, nil
}

func InsertAccount(ctx context.Context, q Querier, number int, bankCode string, balance money.Cents) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (account_number, bank_code, balance_cents, is_active)
		VALUES ($1, $2, $3, TRUE)`,
		number, bankCode, int64(balance))
	return err
}

func GetAccount(ctx context.Context, q Querier, number int, bankCode string) (Account, error) {
	return scanAccount(q.QueryRow(ctx, `
		SELECT account_number, bank_code, balance_cents, is_active, created_at, updated_at
		FROM accounts WHERE account_number = $1 AND bank_code = $2`,
		number, bankCode))
}

// GetAccountForUpdate is GetAccount with a row lock: every composite
// operation that reads a balance and then writes it back inside the same
// transaction must use this instead of GetAccount, or two concurrent
// mutations against the same account can both read the pre-mutation balance
// under READ COMMITTED and produce a lost update (spec.md §3 invariant 2).
func GetAccountForUpdate(ctx context.Context, q Querier, number int, bankCode string) (Account, error) {
	return scanAccount(q.QueryRow(ctx, `
		SELECT account_number, bank_code, balance_cents, is_active, created_at, updated_at
		FROM accounts WHERE account_number = $1 AND bank_code = $2 FOR UPDATE`,
		number, bankCode))
}

func scanAccount(row pgx.Row) (Account, error) {
	var acc Account
	var balanceCents int64
	err := row.Scan(&acc.Number, &acc.BankCode, &balanceCents, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	acc.Balance = money.Cents(balanceCents)
	return acc, nil
}

func UpdateBalance(ctx context.Context, q Querier, number int, bankCode string, newBalance money.Cents) error {
	tag, err := q.Exec(ctx, `
		UPDATE accounts SET balance_cents = $1, updated_at = now()
		WHERE account_number = $2 AND bank_code = $3`,
		int64(newBalance), number, bankCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func AppendLedger(ctx context.Context, q Querier, number int, bankCode string, amount money.Cents, kind TxKind, description string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := q.Exec(ctx, `
		INSERT INTO transactions (correlation_id, account_number, bank_code, amount_cents, kind, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, number, bankCode, int64(amount), string(kind), description)
	return id, err
}

func DeleteAccount(ctx context.Context, q Querier, number int, bankCode string) error {
	tag, err := q.Exec(ctx, `DELETE FROM accounts WHERE account_number = $1 AND bank_code = $2`, number, bankCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func SumBalances(ctx context.Context, q Querier) (money.Cents, error) {
	var sum *int64
	row := q.QueryRow(ctx, `SELECT SUM(balance_cents) FROM accounts`)
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return money.Cents(*sum), nil
}

func CountAccounts(ctx context.Context, q Querier) (int, error) {
	var count int
	row := q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func UpsertKnownBank(ctx context.Context, q Querier, bankCode, ip string, port int) error {
	_, err := q.Exec(ctx, `
		INSERT INTO known_banks (bank_code, ip_address, port, last_seen, is_active)
		VALUES ($1, $2, $3, now(), TRUE)
		ON CONFLICT (bank_code) DO UPDATE SET
			ip_address = EXCLUDED.ip_address,
			port       = EXCLUDED.port,
			last_seen  = now(),
			is_active  = TRUE`,
		bankCode, ip, port)
	return err
}
