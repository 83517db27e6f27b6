package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeInvalidClientIP  Outcome = "invalid_client_ip"
	OutcomeInvalidSignature Outcome = "invalid_signature"
)

// Delivery is one audited webhook attempt. Repeated deliveries of the same
// payload are stored as separate rows.
type Delivery struct {
	ID         uuid.UUID
	RequestID  string
	ClientIP   string
	Outcome    Outcome
	Reason     string
	BodySize   int
	ReceivedAt time.Time
}

type DeliveryStore struct {
	pool *pgxpool.Pool
}

func NewDeliveryStore(pool *pgxpool.Pool) *DeliveryStore {
	return &DeliveryStore{pool: pool}
}

func (s *DeliveryStore) Create(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO webhook_deliveries (id, request_id, client_ip, outcome, reason, body_size, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.ID, d.RequestID, d.ClientIP, string(d.Outcome), d.Reason, d.BodySize, d.ReceivedAt)
	return err
}

func (s *DeliveryStore) List(ctx context.Context, limit, offset int) ([]*Delivery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, request_id, client_ip, outcome, reason, body_size, received_at
		FROM webhook_deliveries
		ORDER BY received_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*Delivery
	for rows.Next() {
		var d Delivery
		err := rows.Scan(&d.ID, &d.RequestID, &d.ClientIP, &d.Outcome, &d.Reason, &d.BodySize, &d.ReceivedAt)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}

func (s *DeliveryStore) GetByID(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	var d Delivery
	err := s.pool.QueryRow(ctx, `
		SELECT id, request_id, client_ip, outcome, reason, body_size, received_at
		FROM webhook_deliveries WHERE id = $1
	`, id).Scan(&d.ID, &d.RequestID, &d.ClientIP, &d.Outcome, &d.Reason, &d.BodySize, &d.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DeliveryStore) CountByOutcome(ctx context.Context) (map[Outcome]int, error) {
	counts := make(map[Outcome]int)

	rows, err := s.pool.Query(ctx, `
		SELECT outcome, COUNT(*) as count
		FROM webhook_deliveries
		GROUP BY outcome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var outcome Outcome
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}
