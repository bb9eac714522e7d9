package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfund/benfund/internal/platform/db"
	"github.com/benfund/benfund/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Payment, int, error)
	Get(ctx context.Context, id int64) (Payment, error)
	Record(ctx context.Context, p Payment) (Payment, error)
	Delete(ctx context.Context, id int64) (Payment, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.MemberID > 0 {
		argCount++
		where += ` AND member_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.MemberID)
	}
	if !filters.From.IsZero() {
		argCount++
		where += ` AND payment_date >= $` + strconv.Itoa(argCount)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		where += ` AND payment_date <= $` + strconv.Itoa(argCount)
		args = append(args, filters.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, member_id, amount, months, payment_date, created_at FROM payments` +
		where + ` ORDER BY payment_date DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Amount, &p.Months, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx, `SELECT id, member_id, amount, months, payment_date, created_at FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.MemberID, &p.Amount, &p.Months, &p.PaymentDate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Record(ctx context.Context, p Payment) (Payment, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var subStart time.Time
		err := tx.QueryRow(ctx, `SELECT subscription_start_date FROM members WHERE id = $1`, p.MemberID).Scan(&subStart)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("member %d: %w", p.MemberID, httpx.ErrNotFound)
		}
		if err != nil {
			return err
		}

		startMonth := CanonicalMonth(subStart.Year(), subStart.Month())
		for _, m := range p.Months {
			if m.Before(startMonth) {
				return fmt.Errorf("month %s precedes subscription start: %w", m.Format("2006-01"), httpx.ErrValidation)
			}
		}

		return tx.QueryRow(ctx,
			`INSERT INTO payments (member_id, amount, months, payment_date) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			p.MemberID, p.Amount, p.Months, p.PaymentDate).Scan(&p.ID, &p.CreatedAt)
	})
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (Payment, error) {
	deleted, err := r.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		return Payment{}, httpx.ErrNotFound
	}
	return deleted, err
}
