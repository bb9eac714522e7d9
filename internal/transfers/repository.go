package transfers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfund/benfund/internal/platform/db"
	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Transfer, int, error)
	Get(ctx context.Context, id int64) (Transfer, error)
	// Record inserts the transfer and moves the member to the destination
	// unit in the same transaction.
	Record(ctx context.Context, t Transfer) (Transfer, error)
	// Delete removes a transfer and restores a consistent current unit for
	// the member by replaying the remaining log. Returns the deleted record.
	Delete(ctx context.Context, id int64) (Transfer, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Transfer, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.MemberID > 0 {
		argCount++
		where += ` AND member_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.MemberID)
	}
	if filters.UnitID > 0 {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		where += ` AND (from_unit_id = ` + p + ` OR to_unit_id = ` + p + `)`
		args = append(args, filters.UnitID)
	}
	if !filters.From.IsZero() {
		argCount++
		where += ` AND transfer_date >= $` + strconv.Itoa(argCount)
		args = append(args, filters.From)
	}
	if !filters.To.IsZero() {
		argCount++
		where += ` AND transfer_date <= $` + strconv.Itoa(argCount)
		args = append(args, filters.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, member_id, from_unit_id, to_unit_id, transfer_date, created_at FROM transfers` +
		where + ` ORDER BY transfer_date DESC, id DESC`
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

	var list []Transfer
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(&t.ID, &t.MemberID, &t.FromUnitID, &t.ToUnitID, &t.TransferDate, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Transfer, error) {
	var t Transfer
	err := r.db.QueryRow(ctx, `SELECT id, member_id, from_unit_id, to_unit_id, transfer_date, created_at FROM transfers WHERE id = $1`, id).
		Scan(&t.ID, &t.MemberID, &t.FromUnitID, &t.ToUnitID, &t.TransferDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transfer{}, httpx.ErrNotFound
	}
	return t, err
}

func (r *repository) Record(ctx context.Context, t Transfer) (Transfer, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var currentUnit int64
		var status string
		err := tx.QueryRow(ctx, `SELECT unit_id, status FROM members WHERE id = $1 FOR UPDATE`, t.MemberID).
			Scan(&currentUnit, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("member %d: %w", t.MemberID, httpx.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if status != "OPENED" {
			return fmt.Errorf("member %d: %w", t.MemberID, shared.ErrMemberClosed)
		}
		if currentUnit != t.FromUnitID {
			return fmt.Errorf("member is in unit %d, not %d: %w", currentUnit, t.FromUnitID, httpx.ErrConflict)
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO transfers (member_id, from_unit_id, to_unit_id, transfer_date) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			t.MemberID, t.FromUnitID, t.ToUnitID, t.TransferDate).Scan(&t.ID, &t.CreatedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE members SET unit_id = $1, updated_at = NOW() WHERE id = $2`, t.ToUnitID, t.MemberID)
		return err
	})
	if err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (Transfer, error) {
	var deleted Transfer
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT id, member_id, from_unit_id, to_unit_id, transfer_date, created_at FROM transfers WHERE id = $1 FOR UPDATE`, id).
			Scan(&deleted.ID, &deleted.MemberID, &deleted.FromUnitID, &deleted.ToUnitID, &deleted.TransferDate, &deleted.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM transfers WHERE id = $1`, id); err != nil {
			return err
		}

		// Latest remaining transfer wins; with an empty log the member falls
		// back to the unit the deleted transfer moved them out of.
		var currentUnit int64
		err = tx.QueryRow(ctx,
			`SELECT to_unit_id FROM transfers WHERE member_id = $1 ORDER BY transfer_date DESC, id DESC LIMIT 1`,
			deleted.MemberID).Scan(&currentUnit)
		if errors.Is(err, pgx.ErrNoRows) {
			currentUnit = deleted.FromUnitID
		} else if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE members SET unit_id = $1, updated_at = NOW() WHERE id = $2`, currentUnit, deleted.MemberID)
		return err
	})
	if err != nil {
		return Transfer{}, err
	}
	return deleted, nil
}
