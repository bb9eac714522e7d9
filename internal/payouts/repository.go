package payouts

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfund/benfund/internal/platform/httpx"
)

const payoutColumns = `id, member_id, reference, reason, gross_amount, deductions, net_amount, payout_date, notes, created_at`

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Payout, int, error)
	Get(ctx context.Context, id int64) (Payout, error)
	Create(ctx context.Context, p Payout) (Payout, error)
	Delete(ctx context.Context, id int64) (Payout, error)
	// MemberClosure returns the status and closure reason of a member.
	MemberClosure(ctx context.Context, memberID int64) (status, reason string, err error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func scanPayout(row pgx.Row) (Payout, error) {
	var p Payout
	var notes *string
	err := row.Scan(&p.ID, &p.MemberID, &p.Reference, &p.Reason, &p.GrossAmount,
		&p.Deductions, &p.NetAmount, &p.PayoutDate, &notes, &p.CreatedAt)
	if notes != nil {
		p.Notes = *notes
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Payout, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.MemberID > 0 {
		argCount++
		where += ` AND member_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.MemberID)
	}
	if filters.Reason != "" {
		argCount++
		where += ` AND reason = $` + strconv.Itoa(argCount)
		args = append(args, filters.Reason)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payouts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + payoutColumns + ` FROM payouts` + where + ` ORDER BY payout_date DESC, id DESC`
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

	var list []Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Payout, error) {
	p, err := scanPayout(r.db.QueryRow(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payout{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Payout) (Payout, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO payouts (member_id, reference, reason, gross_amount, deductions, net_amount, payout_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 RETURNING id, created_at`,
		p.MemberID, p.Reference, p.Reason, p.GrossAmount, p.Deductions, p.NetAmount, p.PayoutDate, p.Notes).
		Scan(&p.ID, &p.CreatedAt)
	return p, err
}

func (r *repository) Delete(ctx context.Context, id int64) (Payout, error) {
	deleted, err := r.Get(ctx, id)
	if err != nil {
		return Payout{}, err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM payouts WHERE id = $1`, id)
	return deleted, err
}

func (r *repository) MemberClosure(ctx context.Context, memberID int64) (string, string, error) {
	var status string
	var reason *string
	err := r.db.QueryRow(ctx, `SELECT status, close_reason FROM members WHERE id = $1`, memberID).
		Scan(&status, &reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", httpx.ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	if reason == nil {
		return status, "", nil
	}
	return status, *reason, nil
}
