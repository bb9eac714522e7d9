package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/benfund/benfund/internal/members"
	"github.com/benfund/benfund/internal/payments"
	"github.com/benfund/benfund/internal/settings"
	"github.com/benfund/benfund/internal/transfers"
	"github.com/benfund/benfund/internal/units"
)

// SnapshotRepository lists the raw collections a report run needs. Events are
// bounded by the period end; arrears look arbitrarily far back, so there is
// no lower bound.
type SnapshotRepository interface {
	Members(ctx context.Context) ([]members.Member, error)
	Units(ctx context.Context) ([]units.Unit, error)
	TransfersThrough(ctx context.Context, through time.Time) ([]transfers.Transfer, error)
	PaymentsThrough(ctx context.Context, through time.Time) ([]payments.Payment, error)
}

// SettingsSource supplies the subscription rate and the signature block.
// Implemented by the settings service.
type SettingsSource interface {
	SubscriptionRate(ctx context.Context) (float64, error)
	Signature(ctx context.Context) (settings.SignatureBlock, error)
}

// Loader materializes snapshots. The five fetches fan out concurrently; the
// engine itself then runs synchronously over the result.
type Loader struct {
	repo     SnapshotRepository
	settings SettingsSource
}

// NewLoader constructs a Loader.
func NewLoader(repo SnapshotRepository, settings SettingsSource) *Loader {
	return &Loader{repo: repo, settings: settings}
}

// Load fetches everything a report over the period needs and drops records
// referencing unknown members, returning one warning per dropped record.
func (l *Loader) Load(ctx context.Context, period Period) (*Snapshot, settings.SignatureBlock, []string, error) {
	through := period.To.End().Add(24 * time.Hour)
	snap := &Snapshot{}
	var sig settings.SignatureBlock

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Rate, err = l.settings.SubscriptionRate(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sig, err = l.settings.Signature(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Members, err = l.repo.Members(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Units, err = l.repo.Units(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Transfers, err = l.repo.TransfersThrough(ctx, through)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Payments, err = l.repo.PaymentsThrough(ctx, through)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, settings.SignatureBlock{}, nil, err
	}

	known := make(map[int64]struct{}, len(snap.Members))
	for _, m := range snap.Members {
		known[m.ID] = struct{}{}
	}

	var warnings []string
	kept := snap.Transfers[:0]
	for _, t := range snap.Transfers {
		if _, ok := known[t.MemberID]; !ok {
			warnings = append(warnings, fmt.Sprintf("transfer %d references unknown member %d", t.ID, t.MemberID))
			continue
		}
		kept = append(kept, t)
	}
	snap.Transfers = kept

	keptPays := snap.Payments[:0]
	for _, p := range snap.Payments {
		if _, ok := known[p.MemberID]; !ok {
			warnings = append(warnings, fmt.Sprintf("payment %d references unknown member %d", p.ID, p.MemberID))
			continue
		}
		keptPays = append(keptPays, p)
	}
	snap.Payments = keptPays

	return snap, sig, warnings, nil
}

// pgxSnapshotRepository is the production SnapshotRepository.
type pgxSnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository constructs the pgx-backed repository.
func NewSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &pgxSnapshotRepository{db: pool}
}

func (r *pgxSnapshotRepository) Members(ctx context.Context) ([]members.Member, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, rank, service_no, unit_id, allotment_date, subscription_start_date, discharge_date, status, COALESCE(close_reason, ''), created_at, updated_at FROM members`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []members.Member
	for rows.Next() {
		var m members.Member
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Rank, &m.ServiceNo, &m.UnitID,
			&m.AllotmentDate, &m.SubscriptionStartDate, &m.DischargeDate,
			&m.Status, &m.CloseReason, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *pgxSnapshotRepository) Units(ctx context.Context) ([]units.Unit, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, created_at, updated_at FROM units`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []units.Unit
	for rows.Next() {
		var u units.Unit
		if err := rows.Scan(&u.ID, &u.Code, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *pgxSnapshotRepository) TransfersThrough(ctx context.Context, through time.Time) ([]transfers.Transfer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, member_id, from_unit_id, to_unit_id, transfer_date, created_at FROM transfers WHERE transfer_date < $1`, through)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []transfers.Transfer
	for rows.Next() {
		var t transfers.Transfer
		if err := rows.Scan(&t.ID, &t.MemberID, &t.FromUnitID, &t.ToUnitID, &t.TransferDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *pgxSnapshotRepository) PaymentsThrough(ctx context.Context, through time.Time) ([]payments.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, member_id, amount, months, payment_date, created_at FROM payments WHERE payment_date < $1`, through)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []payments.Payment
	for rows.Next() {
		var p payments.Payment
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Amount, &p.Months, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
