// Command seedrules loads validation rules from an Excel workbook into the
// rule store. Pairs already stored, or repeated in the workbook, are skipped.
// Usage: go run ./cmd/seedrules rules.xlsx
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"acordex/internal/config"
	"acordex/internal/domain"
	"acordex/internal/export"
	"acordex/internal/logger"
	"acordex/internal/repository/sqlstore"
	"acordex/internal/service"
)

const batchSize = 500

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedrules <workbook.xlsx>")
	}
	xlsxPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	f, err := os.Open(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := export.ReadSeedRows(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", xlsxPath, err)
	}
	zl.Info("workbook read", zap.String("path", xlsxPath), zap.Int("rows", len(rows)))

	if err := sqlstore.Migrate(&cfg.DB); err != nil {
		return err
	}
	db, err := sqlstore.NewDB(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	ruleSvc := service.NewRuleService(sqlstore.NewValidationRuleRepo(db), zl)

	existing, err := ruleSvc.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing rules: %w", err)
	}

	inputs := newInputs(rows, existing, zl)
	for i := 0; i < len(inputs); i += batchSize {
		end := i + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		if _, err := ruleSvc.CreateBatch(ctx, inputs[i:end]); err != nil {
			return fmt.Errorf("create batch at offset %d: %w", i, err)
		}
	}

	zl.Info("rules seeded",
		zap.Int("created", len(inputs)),
		zap.Int("skipped", len(rows)-len(inputs)),
	)
	return nil
}

// newInputs drops rows whose pair is already stored or appeared earlier in
// the workbook, comparing the same way the rule store does.
func newInputs(rows []export.SeedRow, existing []domain.ValidationRule, zl *zap.Logger) []service.RuleInput {
	seen := make(map[string]bool, len(existing)+len(rows))
	for i := range existing {
		seen[pairKey(existing[i].CertificateType, existing[i].ProductName)] = true
	}

	var inputs []service.RuleInput
	for _, row := range rows {
		key := pairKey(row.CertificateType, row.ProductName)
		if seen[key] {
			zl.Debug("skipping known rule", zap.Int("row", row.Row))
			continue
		}
		seen[key] = true
		active := row.IsActive
		inputs = append(inputs, service.RuleInput{
			CertificateType: row.CertificateType,
			ProductName:     row.ProductName,
			IsActive:        &active,
		})
	}
	return inputs
}

func pairKey(certificateType, productName string) string {
	return strings.ToLower(strings.TrimSpace(certificateType)) + "\x00" + strings.ToLower(strings.TrimSpace(productName))
}
