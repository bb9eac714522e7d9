package members

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benfund/benfund/internal/platform/httpx"
)

const memberColumns = `id, code, name, rank, service_no, unit_id, allotment_date, subscription_start_date, discharge_date, status, close_reason, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, id int64, m Member) error
	SetStatus(ctx context.Context, id int64, status, reason string, discharge *time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	var reason *string
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Rank, &m.ServiceNo, &m.UnitID,
		&m.AllotmentDate, &m.SubscriptionStartDate, &m.DischargeDate,
		&m.Status, &reason, &m.CreatedAt, &m.UpdatedAt)
	if reason != nil {
		m.CloseReason = *reason
	}
	return m, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Member, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.UnitID > 0 {
		argCount++
		where += ` AND unit_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.UnitID)
	}
	if filters.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.Search != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		where += ` AND (name ILIKE ` + p + ` OR code ILIKE ` + p + ` OR service_no ILIKE ` + p + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM members`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + memberColumns + ` FROM members` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
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

	var list []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, httpx.ErrNotFound
	}
	return m, err
}

func (r *repository) Create(ctx context.Context, m Member) (Member, error) {
	query := `INSERT INTO members (code, name, rank, service_no, unit_id, allotment_date, subscription_start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, m.Code, m.Name, m.Rank, m.ServiceNo, m.UnitID,
		m.AllotmentDate, m.SubscriptionStartDate, StatusOpened).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Member{}, fmt.Errorf("membership code %s: %w", m.Code, httpx.ErrDuplicate)
		case "23503":
			return Member{}, fmt.Errorf("unit %d: %w", m.UnitID, httpx.ErrValidation)
		}
	}
	m.Status = StatusOpened
	return m, err
}

func (r *repository) Update(ctx context.Context, id int64, m Member) error {
	query := `UPDATE members SET name = $1, rank = $2, service_no = $3, updated_at = NOW() WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, m.Name, m.Rank, m.ServiceNo, id)
	if err == nil && tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return err
}

func (r *repository) SetStatus(ctx context.Context, id int64, status, reason string, discharge *time.Time) error {
	query := `UPDATE members SET status = $1, close_reason = NULLIF($2, ''), discharge_date = $3, updated_at = NOW() WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, status, reason, discharge, id)
	if err == nil && tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "allotment_date":
		return "allotment_date " + dir
	case "name":
		return "name " + dir
	default:
		return "name " + dir
	}
}
