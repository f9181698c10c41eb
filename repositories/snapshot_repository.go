package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-arena/models"
	"github.com/lib/pq"
)

var ErrSnapshotNotFound = errors.New("no persisted snapshot")

// SnapshotRepository — хук персистентности: одно состояние на арену,
// загружается при старте, перезаписывается после каждой мутации.
type SnapshotRepository interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// Снапшот один на процесс, поэтому строка в таблице ровно одна.
const snapshotRowID = 1

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) *postgresSnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

// EnsureSchema создаёт таблицу снапшотов, если её ещё нет.
func (r *postgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS arena_snapshots (
			id         INT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure snapshot schema: %w", err)
	}
	return nil
}

func (r *postgresSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	query := `SELECT data FROM arena_snapshots WHERE id = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, snapshotRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode persisted snapshot: %w", err)
	}
	return &snap, nil
}

func (r *postgresSnapshotRepository) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO arena_snapshots (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, snapshotRowID, data); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("failed to save snapshot (pq %s): %w", pqErr.Code, err)
		}
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
