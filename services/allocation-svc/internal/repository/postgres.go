package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"netalloc/pkg/apperror"
	"netalloc/pkg/database"
	"netalloc/pkg/telemetry"
)

// PostgresRunRepository PostgreSQL реализация
type PostgresRunRepository struct {
	db       database.DB
	maxItems int
}

// NewPostgresRunRepository создаёт репозиторий. При maxItems > 0 после вставки
// удаляются самые старые запуски сверх лимита.
func NewPostgresRunRepository(db database.DB, maxItems int) *PostgresRunRepository {
	return &PostgresRunRepository{db: db, maxItems: maxItems}
}

func (r *PostgresRunRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Create")
	defer span.End()

	if err := prepare(run); err != nil {
		return err
	}

	insert := `
		INSERT INTO allocation_runs (
			id, name, node_count, link_count, demand_count, max_hops, coupling,
			success, message, acceptance_ratio, revenue_cost_ratio,
			total_combinations, valid_combinations, duration_ms, topology_hash,
			request_data, result_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at
	`

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insert,
			run.ID,
			run.Name,
			run.NodeCount,
			run.LinkCount,
			run.DemandCount,
			run.MaxHops,
			run.Coupling,
			run.Success,
			run.Message,
			run.AcceptanceRatio,
			run.RevenueCostRatio,
			run.TotalCombinations,
			run.ValidCombinations,
			run.DurationMs,
			run.TopologyHash,
			run.RequestData,
			run.ResultData,
		).Scan(&run.CreatedAt); err != nil {
			return err
		}

		if r.maxItems <= 0 {
			return nil
		}

		_, err := tx.Exec(ctx, `
			DELETE FROM allocation_runs
			WHERE id IN (
				SELECT id FROM allocation_runs
				ORDER BY created_at DESC
				OFFSET $1
			)
		`, r.maxItems)
		return err
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDatabase, "failed to create run")
	}

	return nil
}

func (r *PostgresRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.GetByID")
	defer span.End()

	if err := validateID(id); err != nil {
		return nil, err
	}

	query := `
		SELECT
			id, name, node_count, link_count, demand_count, max_hops, coupling,
			success, message, acceptance_ratio, revenue_cost_ratio,
			total_combinations, valid_combinations, duration_ms, topology_hash,
			request_data, result_data, created_at
		FROM allocation_runs
		WHERE id = $1
	`

	run := &Run{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Name,
		&run.NodeCount,
		&run.LinkCount,
		&run.DemandCount,
		&run.MaxHops,
		&run.Coupling,
		&run.Success,
		&run.Message,
		&run.AcceptanceRatio,
		&run.RevenueCostRatio,
		&run.TotalCombinations,
		&run.ValidCombinations,
		&run.DurationMs,
		&run.TopologyHash,
		&run.RequestData,
		&run.ResultData,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeDatabase, "failed to get run")
	}

	return run, nil
}

func (r *PostgresRunRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Delete")
	defer span.End()

	if err := validateID(id); err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, `DELETE FROM allocation_runs WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeDatabase, "failed to delete run")
	}

	if result.RowsAffected() == 0 {
		return ErrRunNotFound
	}

	return nil
}

func (r *PostgresRunRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Count")
	defer span.End()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM allocation_runs`).Scan(&total); err != nil {
		return 0, apperror.Wrap(err, apperror.CodeDatabase, "failed to count runs")
	}
	return total, nil
}

func (r *PostgresRunRepository) List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.List")
	defer span.End()

	o := opts.normalize()
	where, args := buildWhereClause(o.Filter)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM allocation_runs WHERE %s`, where)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeDatabase, "failed to count runs")
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			id, name, node_count, link_count, demand_count, success,
			acceptance_ratio, revenue_cost_ratio, total_combinations,
			duration_ms, topology_hash, created_at
		FROM allocation_runs
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, buildOrderBy(o.Sort), len(args)+1, len(args)+2)

	args = append(args, o.Limit, o.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeDatabase, "failed to list runs")
	}
	defer rows.Close()

	var results []*RunSummary
	for rows.Next() {
		s := &RunSummary{}
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.NodeCount,
			&s.LinkCount,
			&s.DemandCount,
			&s.Success,
			&s.AcceptanceRatio,
			&s.RevenueCostRatio,
			&s.TotalCombinations,
			&s.DurationMs,
			&s.TopologyHash,
			&s.CreatedAt,
		); err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeDatabase, "failed to scan run")
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeDatabase, "rows iteration error")
	}

	return results, total, nil
}

func buildWhereClause(filter *ListFilter) (string, []any) {
	conditions := []string{"TRUE"}
	var args []any

	if filter != nil {
		if filter.Success != nil {
			args = append(args, *filter.Success)
			conditions = append(conditions, fmt.Sprintf("success = $%d", len(args)))
		}
		if filter.TopologyHash != "" {
			args = append(args, filter.TopologyHash)
			conditions = append(conditions, fmt.Sprintf("topology_hash = $%d", len(args)))
		}
		if filter.Since != nil {
			args = append(args, *filter.Since)
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
		}
	}

	return strings.Join(conditions, " AND "), args
}

func buildOrderBy(sort SortOrder) string {
	switch sort {
	case SortByCreatedAsc:
		return "created_at ASC"
	case SortByAcceptanceDesc:
		return "acceptance_ratio DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}
