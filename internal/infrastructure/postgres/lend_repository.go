package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialecto postgres
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/relief-ledger/internal/domain/entity"
	"github.com/jhoicas/relief-ledger/internal/domain/repository"
)

var _ repository.LendRepository = (*LendRepo)(nil)

const (
	dialectPostgres = "postgres"
	tableLends      = "lend_transactions"
)

var lendCols = []interface{}{
	"id", "requester_id", "kind", "source_warehouse_id", "destination_warehouse_id", "item_id",
	"quantity", "status", "note", "decided_by", "created_at", "decided_at", "returned_at",
}

// LendRepo implementación de LendRepository sobre PostgreSQL (usable con pool o tx).
type LendRepo struct {
	q Querier
}

// NewLendRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLendRepository(q Querier) *LendRepo {
	return &LendRepo{q: q}
}

// Create persiste una transacción nueva.
func (r *LendRepo) Create(ctx context.Context, t *entity.LendTransaction) error {
	query := `
		INSERT INTO lend_transactions (id, requester_id, kind, source_warehouse_id, destination_warehouse_id,
			item_id, quantity, status, note, decided_by, created_at, decided_at, returned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.RequesterID, string(t.Kind), t.SourceWarehouseID, nullable(t.DestinationWarehouseID),
		t.ItemID, t.Quantity, string(t.Status), t.Note, t.DecidedBy, t.CreatedAt, t.DecidedAt, t.ReturnedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lend: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción; nil si no existe.
func (r *LendRepo) GetByID(ctx context.Context, id string) (*entity.LendTransaction, error) {
	return r.getOne(ctx, false, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila.
func (r *LendRepo) GetForUpdate(ctx context.Context, id string) (*entity.LendTransaction, error) {
	return r.getOne(ctx, true, id)
}

func (r *LendRepo) getOne(ctx context.Context, forUpdate bool, id string) (*entity.LendTransaction, error) {
	ds := goqu.Dialect(dialectPostgres).From(tableLends).Select(lendCols...).Where(goqu.C("id").Eq(id))
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build lend query: %w", err)
	}
	t, err := scanLend(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lend: %w", err)
	}
	return t, nil
}

// UpdateStatus persiste estado y marcas de decisión/devolución.
func (r *LendRepo) UpdateStatus(ctx context.Context, t *entity.LendTransaction) error {
	query := `
		UPDATE lend_transactions
		SET status = $2, decided_by = $3, decided_at = $4, returned_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, t.ID, string(t.Status), t.DecidedBy, t.DecidedAt, t.ReturnedAt)
	if err != nil {
		return fmt.Errorf("update lend: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update lend: %w", pgx.ErrNoRows)
	}
	return nil
}

// List arma el filtro dinámico con goqu; más recientes primero.
func (r *LendRepo) List(ctx context.Context, f repository.LendFilter) ([]*entity.LendTransaction, error) {
	query, args, err := buildLendListQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lends: %w", err)
	}
	defer rows.Close()
	var list []*entity.LendTransaction
	for rows.Next() {
		t, err := scanLend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lend: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CountByWarehouse transacciones donde la bodega es origen o destino.
func (r *LendRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM lend_transactions
		WHERE source_warehouse_id = $1 OR destination_warehouse_id = $1`, warehouseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count lends: %w", err)
	}
	return n, nil
}

func buildLendListQuery(f repository.LendFilter) (string, []interface{}, error) {
	ds := goqu.Dialect(dialectPostgres).From(tableLends).Select(lendCols...)
	if f.RequesterID != "" {
		ds = ds.Where(goqu.C("requester_id").Eq(f.RequesterID))
	}
	if f.WarehouseID != "" {
		ds = ds.Where(goqu.Or(
			goqu.C("source_warehouse_id").Eq(f.WarehouseID),
			goqu.C("destination_warehouse_id").Eq(f.WarehouseID),
		))
	}
	if f.ItemID != "" {
		ds = ds.Where(goqu.C("item_id").Eq(f.ItemID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		ds = ds.Where(goqu.C("status").In(statuses))
	}
	ds = ds.Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build lend list query: %w", err)
	}
	return query, args, nil
}

func scanLend(row pgx.Row) (*entity.LendTransaction, error) {
	var t entity.LendTransaction
	var kind, status string
	var dest *string
	var decidedAt, returnedAt *time.Time
	err := row.Scan(&t.ID, &t.RequesterID, &kind, &t.SourceWarehouseID, &dest, &t.ItemID,
		&t.Quantity, &status, &t.Note, &t.DecidedBy, &t.CreatedAt, &decidedAt, &returnedAt)
	if err != nil {
		return nil, err
	}
	t.Kind = entity.LendKind(kind)
	t.Status = entity.LendStatus(status)
	if dest != nil {
		t.DestinationWarehouseID = *dest
	}
	t.DecidedAt, t.ReturnedAt = decidedAt, returnedAt
	return &t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
