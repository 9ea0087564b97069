package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"acordex/internal/domain"
	"acordex/internal/port"
)

const ruleColumns = "id, certificate_type, product_name, is_active, created_at, updated_at"

type validationRuleRepo struct {
	db *sqlx.DB
}

// NewValidationRuleRepo creates a SQL-backed ValidationRuleRepository.
func NewValidationRuleRepo(db *sqlx.DB) port.ValidationRuleRepository {
	return &validationRuleRepo{db: db}
}

func (r *validationRuleRepo) CreateBatch(ctx context.Context, rules []*domain.ValidationRule) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insert := tx.Rebind(`INSERT INTO validation_rules (
			certificate_type, product_name, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?) RETURNING id`)

		var conflicts []domain.RuleConflict
		for i, rule := range rules {
			existing, err := findByPair(ctx, tx, rule.CertificateType, rule.ProductName, 0)
			if err != nil {
				return fmt.Errorf("validationRuleRepo.CreateBatch: %w", err)
			}
			if existing != nil {
				conflicts = append(conflicts, conflictOf(i, rule, existing.ID))
			}
			// after the first conflict the batch is only checked, not written
			if len(conflicts) > 0 {
				continue
			}

			now := time.Now().UTC()
			rule.CreatedAt = now
			rule.UpdatedAt = now
			err = tx.QueryRowxContext(ctx, insert,
				rule.CertificateType, rule.ProductName, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
			).Scan(&rule.ID)
			if err != nil {
				if isUniqueViolation(err) {
					return duplicateOf(i, rule, 0)
				}
				return fmt.Errorf("validationRuleRepo.CreateBatch: %w", err)
			}
		}
		if len(conflicts) > 0 {
			return domain.NewDuplicateRuleError(conflicts)
		}
		return nil
	})
	if err != nil {
		// nothing was persisted, so no rule keeps an id
		for _, rule := range rules {
			rule.ID = 0
		}
		return err
	}
	return nil
}

func (r *validationRuleRepo) GetByID(ctx context.Context, id int64) (*domain.ValidationRule, error) {
	var rule domain.ValidationRule
	err := r.db.GetContext(ctx, &rule,
		r.db.Rebind("SELECT "+ruleColumns+" FROM validation_rules WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.RuleNotFoundError{IDs: []int64{id}}
		}
		return nil, fmt.Errorf("validationRuleRepo.GetByID: %w", err)
	}
	return &rule, nil
}

func (r *validationRuleRepo) List(ctx context.Context) ([]domain.ValidationRule, error) {
	rules := []domain.ValidationRule{}
	err := r.db.SelectContext(ctx, &rules,
		"SELECT "+ruleColumns+" FROM validation_rules ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("validationRuleRepo.List: %w", err)
	}
	return rules, nil
}

func (r *validationRuleRepo) UpdateBatch(ctx context.Context, rules []*domain.ValidationRule) error {
	ids := make([]int64, len(rules))
	for i, rule := range rules {
		ids[i] = rule.ID
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		missing, err := missingIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("validationRuleRepo.UpdateBatch: %w", err)
		}
		if len(missing) > 0 {
			return &domain.RuleNotFoundError{IDs: missing}
		}

		update := tx.Rebind(`UPDATE validation_rules SET
			certificate_type = ?, product_name = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`)
		createdAt := tx.Rebind("SELECT created_at FROM validation_rules WHERE id = ?")

		var conflicts []domain.RuleConflict
		for i, rule := range rules {
			existing, err := findByPair(ctx, tx, rule.CertificateType, rule.ProductName, rule.ID)
			if err != nil {
				return fmt.Errorf("validationRuleRepo.UpdateBatch: %w", err)
			}
			if existing != nil {
				conflicts = append(conflicts, conflictOf(i, rule, existing.ID))
			}
			if len(conflicts) > 0 {
				continue
			}

			rule.UpdatedAt = time.Now().UTC()
			result, err := tx.ExecContext(ctx, update,
				rule.CertificateType, rule.ProductName, rule.IsActive, rule.UpdatedAt, rule.ID)
			if err != nil {
				if isUniqueViolation(err) {
					return duplicateOf(i, rule, 0)
				}
				return fmt.Errorf("validationRuleRepo.UpdateBatch: %w", err)
			}
			rows, _ := result.RowsAffected()
			if rows == 0 {
				return &domain.RuleNotFoundError{IDs: []int64{rule.ID}}
			}
			if err := tx.GetContext(ctx, &rule.CreatedAt, createdAt, rule.ID); err != nil {
				return fmt.Errorf("validationRuleRepo.UpdateBatch: %w", err)
			}
		}
		if len(conflicts) > 0 {
			return domain.NewDuplicateRuleError(conflicts)
		}
		return nil
	})
}

func (r *validationRuleRepo) DeleteBatch(ctx context.Context, ids []int64) ([]domain.ValidationRule, error) {
	var deleted []domain.ValidationRule

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		missing, err := missingIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: %w", err)
		}
		if len(missing) > 0 {
			return &domain.RuleNotFoundError{IDs: missing}
		}

		query, args, err := sqlx.In("SELECT "+ruleColumns+" FROM validation_rules WHERE id IN (?)", ids)
		if err != nil {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: %w", err)
		}
		var rows []domain.ValidationRule
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: %w", err)
		}

		query, args, err = sqlx.In("DELETE FROM validation_rules WHERE id IN (?)", ids)
		if err != nil {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: %w", err)
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: %w", err)
		}
		if n, _ := result.RowsAffected(); n != int64(len(rows)) {
			return fmt.Errorf("validationRuleRepo.DeleteBatch: deleted %d rows, expected %d", n, len(rows))
		}

		byID := make(map[int64]domain.ValidationRule, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}
		deleted = make([]domain.ValidationRule, 0, len(ids))
		for _, id := range ids {
			deleted = append(deleted, byID[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *validationRuleRepo) FindActiveMatch(ctx context.Context, certificateType, productName string) (*domain.ValidationRule, error) {
	var rule domain.ValidationRule
	err := r.db.GetContext(ctx, &rule, r.db.Rebind(
		`SELECT `+ruleColumns+` FROM validation_rules
		 WHERE certificate_type = ? AND product_name = ? AND is_active = ?
		 ORDER BY id LIMIT 1`),
		certificateType, productName, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("validationRuleRepo.FindActiveMatch: %w", err)
	}
	return &rule, nil
}

func (r *validationRuleRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// findByPair returns the rule other than excludeID whose pair equals the given
// one after trimming and case folding, or nil.
func findByPair(ctx context.Context, tx *sqlx.Tx, certificateType, productName string, excludeID int64) (*domain.ValidationRule, error) {
	var rule domain.ValidationRule
	err := tx.GetContext(ctx, &rule, tx.Rebind(
		`SELECT `+ruleColumns+` FROM validation_rules
		 WHERE LOWER(TRIM(certificate_type)) = LOWER(TRIM(?))
		   AND LOWER(TRIM(product_name)) = LOWER(TRIM(?))
		   AND id <> ?
		 ORDER BY id LIMIT 1`),
		certificateType, productName, excludeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// missingIDs returns the ids that have no row, in request order.
func missingIDs(ctx context.Context, tx *sqlx.Tx, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id FROM validation_rules WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	present := make(map[int64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []int64
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing, nil
}

func conflictOf(index int, rule *domain.ValidationRule, existingID int64) domain.RuleConflict {
	return domain.RuleConflict{
		Index:           index,
		ExistingID:      existingID,
		CertificateType: rule.CertificateType,
		ProductName:     rule.ProductName,
	}
}

func duplicateOf(index int, rule *domain.ValidationRule, existingID int64) *domain.DuplicateRuleError {
	return domain.NewDuplicateRuleError([]domain.RuleConflict{conflictOf(index, rule, existingID)})
}
