package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
)

// Pool abstracts the pgx connection pool so tests can substitute a mock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// newPgxPool is a construction seam replaced by tests.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type messageRepository struct {
	storage *Storage
}

type subscriberRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Messages() repository.MessageRepository {
	return &messageRepository{storage: s}
}

func (s *Storage) Subscribers() repository.SubscriberRepository {
	return &subscriberRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL,
            phone TEXT NOT NULL,
            network TEXT NOT NULL,
            amount BIGINT NOT NULL,
            notify_message TEXT NOT NULL DEFAULT '',
            proof_ref TEXT NOT NULL DEFAULT '',
            transaction_id TEXT NOT NULL DEFAULT '',
            paid BOOLEAN NOT NULL DEFAULT FALSE,
            status TEXT NOT NULL DEFAULT 'NEW',
            activation_code TEXT NOT NULL DEFAULT '',
            customer_chat BIGINT NOT NULL DEFAULT 0,
            customer_message INT NOT NULL DEFAULT 0,
            merchant_chat BIGINT NOT NULL DEFAULT 0,
            merchant_message INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_messages (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            party TEXT NOT NULL,
            chat_id BIGINT NOT NULL,
            message_id INT NOT NULL,
            sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS subscribers (
            user_id BIGINT PRIMARY KEY,
            subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            notified_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_open ON orders(customer_id) WHERE status = 'NEW'`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_messages_order ON order_messages(order_id)`,
	}

	// All or nothing: a half-created schema is worse than none.
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}
		}
		return nil
	})
}

const orderColumns = `id, customer_id, phone, network, amount, notify_message, proof_ref,
                      transaction_id, paid, status, activation_code,
                      customer_chat, customer_message, merchant_chat, merchant_message,
                      created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Phone, &o.Network, &o.Amount,
		&o.NotifyMessage, &o.ProofRef, &o.TransactionID, &o.Paid, &o.Status, &o.ActivationCode,
		&o.CustomerMsg.ChatID, &o.CustomerMsg.MessageID, &o.MerchantMsg.ChatID, &o.MerchantMsg.MessageID,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, fields repository.OrderFields) (*model.Order, error) {
	const query = `INSERT INTO orders (customer_id, phone, network, amount, notify_message, proof_ref, paid)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, status, created_at, updated_at`
	order := model.Order{
		CustomerID:    fields.CustomerID,
		Phone:         fields.Phone,
		Network:       fields.Network,
		Amount:        fields.Amount,
		NotifyMessage: fields.NotifyMessage,
		ProofRef:      fields.ProofRef,
		Paid:          fields.Paid,
	}
	err := r.storage.pool.QueryRow(ctx, query,
		fields.CustomerID, fields.Phone, fields.Network, fields.Amount,
		fields.NotifyMessage, fields.ProofRef, fields.Paid).
		Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) OpenByCustomer(ctx context.Context, customerID int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE customer_id=$1 AND status='NEW'
              ORDER BY created_at DESC LIMIT 1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, customerID))
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func guardClause(guard repository.Guard) string {
	switch guard {
	case repository.GuardNew:
		return ` AND status='NEW'`
	case repository.GuardUnpaidDone:
		return ` AND status='DONE' AND paid=FALSE`
	default:
		return ``
	}
}

func (r *orderRepository) Update(ctx context.Context, orderID int64, update repository.OrderUpdate) error {
	assignments := []string{`updated_at=NOW()`}
	args := []any{orderID}
	next := func() int { return len(args) + 1 }

	if update.NotifyMessage != nil {
		assignments = append(assignments, fmt.Sprintf(`notify_message=$%d`, next()))
		args = append(args, *update.NotifyMessage)
	}
	if update.ProofRef != nil {
		assignments = append(assignments, fmt.Sprintf(`proof_ref=$%d`, next()))
		args = append(args, *update.ProofRef)
	}
	if update.TransactionID != nil {
		assignments = append(assignments, fmt.Sprintf(`transaction_id=$%d`, next()))
		args = append(args, *update.TransactionID)
	}
	if update.Paid != nil {
		assignments = append(assignments, fmt.Sprintf(`paid=$%d`, next()))
		args = append(args, *update.Paid)
	}
	if update.ActivationCode != nil {
		assignments = append(assignments, fmt.Sprintf(`activation_code=$%d`, next()))
		args = append(args, *update.ActivationCode)
	}
	if update.CustomerMsg != nil {
		assignments = append(assignments, fmt.Sprintf(`customer_chat=$%d, customer_message=$%d`, next(), next()+1))
		args = append(args, update.CustomerMsg.ChatID, update.CustomerMsg.MessageID)
	}
	if update.MerchantMsg != nil {
		assignments = append(assignments, fmt.Sprintf(`merchant_chat=$%d, merchant_message=$%d`, next(), next()+1))
		args = append(args, update.MerchantMsg.ChatID, update.MerchantMsg.MessageID)
	}

	query := `UPDATE orders SET ` + strings.Join(assignments, ", ") + ` WHERE id=$1` + guardClause(update.Guard)
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.explainMiss(ctx, orderID)
	}
	return nil
}

func (r *orderRepository) SetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status='NEW'`
	tag, err := r.storage.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.explainMiss(ctx, orderID)
	}
	return nil
}

// explainMiss distinguishes a guard rejection from a missing row after a
// zero-row update.
func (r *orderRepository) explainMiss(ctx context.Context, orderID int64) error {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrNotFound
}

// --- MessageRepository implementation ---

func (r *messageRepository) Append(ctx context.Context, orderID int64, party model.Party, handle model.Handle) error {
	const query = `INSERT INTO order_messages (order_id, party, chat_id, message_id) VALUES ($1, $2, $3, $4)`
	_, err := r.storage.pool.Exec(ctx, query, orderID, party, handle.ChatID, handle.MessageID)
	return err
}

func (r *messageRepository) ListByOrder(ctx context.Context, orderID int64) (map[model.Party][]model.Handle, error) {
	const query = `SELECT party, chat_id, message_id FROM order_messages WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[model.Party][]model.Handle)
	for rows.Next() {
		var party model.Party
		var handle model.Handle
		if err := rows.Scan(&party, &handle.ChatID, &handle.MessageID); err != nil {
			return nil, err
		}
		result[party] = append(result[party], handle)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *messageRepository) DeleteByOrder(ctx context.Context, orderID int64) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM order_messages WHERE order_id=$1`, orderID)
	return err
}

// --- SubscriberRepository implementation ---

func (r *subscriberRepository) Add(ctx context.Context, userID int64) error {
	const query = `INSERT INTO subscribers (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}

func (r *subscriberRepository) ListIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT user_id::text FROM subscribers ORDER BY subscribed_at, user_id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *subscriberRepository) List(ctx context.Context) ([]model.Subscriber, error) {
	const query = `SELECT user_id, subscribed_at, notified_at FROM subscribers ORDER BY subscribed_at, user_id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Subscriber
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.UserID, &s.FirstSeen, &s.LastNotified); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *subscriberRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&count)
	return count, err
}

func (r *subscriberRepository) MarkNotified(ctx context.Context, userID int64) error {
	const query = `UPDATE subscribers SET notified_at=NOW() WHERE user_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, userID)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// DB exposes the underlying pool for advanced use.
func (s *Storage) DB() Pool {
	return s.pool
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
