package mysql

import (
	"context"
	"database/sql"

	"antifake/internal/domain"
)

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// AddSnapshot appends a price point for the article. A snapshot identical to
// the most recent one is skipped, so the history only records changes.
func (r *Repo) AddSnapshot(ctx context.Context, article int64, basicU, productU *int64) error {
	var lastBasic, lastProduct sql.NullInt64
	err := r.db.QueryRowContext(ctx, latestSnapshotSQL, article).Scan(&lastBasic, &lastProduct)
	switch {
	case err == sql.ErrNoRows:
		// first sighting, fall through to insert
	case err != nil:
		return err
	default:
		if sameNullable(lastBasic, basicU) && sameNullable(lastProduct, productU) {
			return nil
		}
	}
	_, err = r.db.ExecContext(ctx, insertSnapshotSQL, article, valInt64(basicU), valInt64(productU))
	return err
}

func sameNullable(stored sql.NullInt64, incoming *int64) bool {
	if !stored.Valid {
		return incoming == nil
	}
	return incoming != nil && stored.Int64 == *incoming
}

// History returns the most recent price points, newest first.
func (r *Repo) History(ctx context.Context, article int64, limit int) ([]domain.PricePoint, error) {
	rows, err := r.db.QueryContext(ctx, historySQL, article, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var basicU, productU sql.NullInt64
		if err := rows.Scan(&p.TS, &basicU, &productU); err != nil {
			return nil, err
		}
		if basicU.Valid {
			v := basicU.Int64
			p.BasicU = &v
		}
		if productU.Valid {
			v := productU.Int64
			p.ProductU = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) LogMiss(ctx context.Context, article int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, article, status, reason)
	return err
}
