package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"grovesim/internal/types"
)

// DefaultListLimit caps how many runs a single list call returns when the
// caller does not specify a limit.
const DefaultListLimit = 20

// MaxListLimit is the hard cap on list page size.
const MaxListLimit = 100

// SimulationRunRepository provides data access for the simulation_runs
// table. Input scalars are stored as typed columns so runs can be filtered
// by management variables; the full result (including the 20-year soil
// series) is stored as JSONB.
type SimulationRunRepository struct {
	db DBTX
}

// NewSimulationRunRepository creates a repository backed by the given
// database connection (pool or transaction).
func NewSimulationRunRepository(db DBTX) *SimulationRunRepository {
	return &SimulationRunRepository{db: db}
}

// runColumns is the standard column set for simulation run queries.
const runColumns = `id, rainfall_mm, cover_pct, mowing, climate_change, result, created_at`

// Create inserts a new simulation run record.
func (r *SimulationRunRepository) Create(ctx context.Context, run *types.SimulationRun) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to encode simulation result", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO simulation_runs (id, rainfall_mm, cover_pct, mowing, climate_change, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID,
		run.Input.RainfallMM,
		run.Input.CoverPct,
		string(run.Input.Mowing),
		run.Input.ClimateChange,
		resultJSON,
		run.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppErrorWithDetails(
				types.ErrCodeConflictDuplicateRun,
				"a simulation run with this id already exists",
				err,
				map[string]any{"id": run.ID},
			)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to store simulation run", err)
	}
	return nil
}

// GetByID fetches a single run by its identifier. Returns a not-found
// AppError when no row matches.
func (r *SimulationRunRepository) GetByID(ctx context.Context, id string) (*types.SimulationRun, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM simulation_runs
		WHERE id = $1`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundSimulation, "simulation run not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load simulation run", err)
	}
	return run, nil
}

// ListRecent returns the most recent runs, newest first. A non-positive
// limit falls back to DefaultListLimit; limits above MaxListLimit are
// capped.
func (r *SimulationRunRepository) ListRecent(ctx context.Context, limit int) ([]*types.SimulationRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+runColumns+`
		FROM simulation_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list simulation runs", err)
	}
	defer rows.Close()

	var runs []*types.SimulationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan simulation run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate simulation runs", err)
	}

	return runs, nil
}

// scanRun scans a single run row. The column order must match runColumns.
func scanRun(row pgx.Row) (*types.SimulationRun, error) {
	var (
		run        types.SimulationRun
		mowing     string
		resultJSON []byte
		createdAt  time.Time
	)

	err := row.Scan(
		&run.ID,
		&run.Input.RainfallMM,
		&run.Input.CoverPct,
		&mowing,
		&run.Input.ClimateChange,
		&resultJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.Input.Mowing = types.MowingTiming(mowing)
	run.CreatedAt = createdAt

	if err := json.Unmarshal(resultJSON, &run.Result); err != nil {
		return nil, err
	}

	return &run, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (error code 23505). Used to detect duplicate run identifiers
// on insert and return a conflict-level application error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
