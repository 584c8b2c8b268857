package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Record(ctx context.Context, e Entry) error {
	if e.Qty <= 0 {
		return fmt.Errorf("qty must be > 0")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stock_journal (chat_id, supply_id, color_id, qty, type, note, source, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ChatID, e.SupplyID, e.ColorID, e.Qty, string(e.Type), e.Note, string(e.Source), e.Error)
	return err
}

// ListByChat: последние операции оператора, новые сверху.
func (r *Repo) ListByChat(ctx context.Context, chatID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, chat_id, supply_id, color_id, qty, type, note, source, error
		FROM stock_journal
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var typ, src string
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ChatID, &e.SupplyID, &e.ColorID, &e.Qty, &typ, &e.Note, &src, &e.Error); err != nil {
			return nil, err
		}
		e.Type = MoveType(typ)
		e.Source = Source(src)
		out = append(out, e)
	}
	return out, rows.Err()
}
