package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PolicyRepository encapsulates SLA policy persistence.
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Update(ctx context.Context, policy *domain.SLAPolicy) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	List(ctx context.Context) ([]domain.SLAPolicy, error)
	FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error)
	FindDefault(ctx context.Context) (*domain.SLAPolicy, error)
	FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error)
	// ClearDefaultExcept unsets is_default on every other policy, keeping
	// the single-default invariant. Last write wins on concurrent edits.
	ClearDefaultExcept(ctx context.Context, id string) error
}

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository instantiates repository.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

const policyColumns = `id, name, description, category, priority_rules, escalation_levels,
               warnings, auto_escalation, is_active, is_default, created_at, updated_at`

func (r *policyRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (name, description, category, priority_rules,
            escalation_levels, warnings, auto_escalation, is_active, is_default)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.Description,
		policy.Category,
		policy.PriorityRules,
		policy.EscalationLevels,
		policy.Warnings,
		policy.AutoEscalation,
		policy.IsActive,
		policy.IsDefault,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *policyRepository) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, description=$2, category=$3, priority_rules=$4,
            escalation_levels=$5, warnings=$6, auto_escalation=$7, is_active=$8,
            is_default=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		policy.Name,
		policy.Description,
		policy.Category,
		policy.PriorityRules,
		policy.EscalationLevels,
		policy.Warnings,
		policy.AutoEscalation,
		policy.IsActive,
		policy.IsDefault,
		policy.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *policyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sla_policies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *policyRepository) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *policyRepository) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(policyFields(&policy)...); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

func (r *policyRepository) FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies
        WHERE is_active=true AND category=$1
        ORDER BY updated_at DESC LIMIT 1`
	return r.fetchOptional(ctx, query, category)
}

func (r *policyRepository) FindDefault(ctx context.Context) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies
        WHERE is_active=true AND is_default=true LIMIT 1`
	return r.fetchOptional(ctx, query)
}

func (r *policyRepository) FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies
        WHERE is_active=true ORDER BY created_at ASC LIMIT 1`
	return r.fetchOptional(ctx, query)
}

func (r *policyRepository) ClearDefaultExcept(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sla_policies SET is_default=false, updated_at=NOW() WHERE is_default=true AND id<>$1`, id)
	return err
}

func (r *policyRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, args...).Scan(policyFields(&policy)...); err != nil {
		return nil, err
	}
	return &policy, nil
}

// fetchOptional maps "no rows" to a nil policy so resolver strategies can
// fall through without treating absence as failure.
func (r *policyRepository) fetchOptional(ctx context.Context, query string, args ...any) (*domain.SLAPolicy, error) {
	policy, err := r.fetchSingle(ctx, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return policy, nil
}

func policyFields(policy *domain.SLAPolicy) []any {
	return []any{
		&policy.ID,
		&policy.Name,
		&policy.Description,
		&policy.Category,
		&policy.PriorityRules,
		&policy.EscalationLevels,
		&policy.Warnings,
		&policy.AutoEscalation,
		&policy.IsActive,
		&policy.IsDefault,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	}
}
