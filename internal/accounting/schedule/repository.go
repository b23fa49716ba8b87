package schedule

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

// Repository persists mapping catalogs.
type Repository interface {
	Load(ctx context.Context, standard string, statementType StatementType) ([]Mapping, error)
	Replace(ctx context.Context, standard string, statementType StatementType, items []Mapping) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Load(ctx context.Context, standard string, statementType StatementType) ([]Mapping, error) {
	rows, err := r.db.Query(ctx, `SELECT gaap_standard, statement_type, line_item_code, line_item_name, display_order, indent_level,
is_bold, is_total, has_sub_schedule, rollup_parent, rollup_sign, role
FROM schedule_mappings WHERE gaap_standard=$1 AND statement_type=$2 ORDER BY display_order, line_item_code`, standard, statementType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Standard, &m.StatementType, &m.LineItemCode, &m.LineItemName, &m.DisplayOrder, &m.IndentLevel,
			&m.IsBold, &m.IsTotal, &m.HasSubSchedule, &m.RollupParent, &m.RollupSign, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Replace swaps the stored catalog atomically.
func (r *repository) Replace(ctx context.Context, standard string, statementType StatementType, items []Mapping) error {
	return db.WithTxOptions(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM schedule_mappings WHERE gaap_standard=$1 AND statement_type=$2`, standard, statementType); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, m := range items {
			batch.Queue(`INSERT INTO schedule_mappings (gaap_standard, statement_type, line_item_code, line_item_name, display_order, indent_level,
is_bold, is_total, has_sub_schedule, rollup_parent, rollup_sign, role) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
				standard, statementType, m.LineItemCode, m.LineItemName, m.DisplayOrder, m.IndentLevel,
				m.IsBold, m.IsTotal, m.HasSubSchedule, m.RollupParent, m.RollupSign, m.Role)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
