package repositories

import (
	"context"
	"fmt"

	"backoffice-console/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	auditTable  = "audit_entries"
	auditFields = "id, actor_id, resource, action, COALESCE(record_id, ''), outcome, COALESCE(detail, ''), created_at"
)

// AuditFilter - фильтр журнала; пустые поля не ограничивают выборку.
type AuditFilter struct {
	Resource string
	ActorID  string
	Outcome  string
	Limit    uint64
	Offset   uint64
}

type AuditRepositoryInterface interface {
	Insert(ctx context.Context, entry entities.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]entities.AuditEntry, uint64, error)
}

type auditRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAuditRepository(storage *pgxpool.Pool, logger *zap.Logger) AuditRepositoryInterface {
	return &auditRepository{storage: storage, logger: logger}
}

var auditSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func insertAuditQuery(entry entities.AuditEntry) sq.InsertBuilder {
	return auditSQL.Insert(auditTable).
		Columns("id", "actor_id", "resource", "action", "record_id", "outcome", "detail", "created_at").
		Values(entry.ID, entry.ActorID, entry.Resource, entry.Action,
			nullIfEmpty(entry.RecordID), entry.Outcome, nullIfEmpty(entry.Detail), entry.CreatedAt)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func applyAuditFilter(b sq.SelectBuilder, filter AuditFilter) sq.SelectBuilder {
	if filter.Resource != "" {
		b = b.Where(sq.Eq{"resource": filter.Resource})
	}
	if filter.ActorID != "" {
		b = b.Where(sq.Eq{"actor_id": filter.ActorID})
	}
	if filter.Outcome != "" {
		b = b.Where(sq.Eq{"outcome": filter.Outcome})
	}
	return b
}

func countAuditQuery(filter AuditFilter) sq.SelectBuilder {
	return applyAuditFilter(auditSQL.Select("COUNT(id)").From(auditTable), filter)
}

func selectAuditQuery(filter AuditFilter) sq.SelectBuilder {
	b := applyAuditFilter(auditSQL.Select(auditFields).From(auditTable), filter).
		OrderBy("created_at DESC", "id")
	if filter.Limit > 0 {
		b = b.Limit(filter.Limit).Offset(filter.Offset)
	}
	return b
}

func (r *auditRepository) Insert(ctx context.Context, entry entities.AuditEntry) error {
	query, args, err := insertAuditQuery(entry).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL insert: %w", err)
	}
	if _, err := r.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи журнала: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]entities.AuditEntry, uint64, error) {
	countQuery, countArgs, err := countAuditQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения count: %w", err)
	}
	if total == 0 {
		return []entities.AuditEntry{}, 0, nil
	}

	query, args, err := selectAuditQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.AuditEntry, 0)
	for rows.Next() {
		var e entities.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Resource, &e.Action, &e.RecordID, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
