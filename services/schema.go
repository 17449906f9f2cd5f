package services

import (
	"gorm.io/gorm"

	"procurement-receipt-api/config"
)

// Optional columns that older deployments may be missing. Instead of
// catching a missing-column error per request, the schema is probed once
// at startup and transitions consult the capability set.
var optionalColumns = map[string][]string{
	"goods_receipts": {"inspector_note", "approval_note", "rejection_reason"},
	"work_receipts":  {"approval_note", "rejection_reason"},
}

// SchemaCapabilities records which optional columns exist in the
// connected database.
type SchemaCapabilities struct {
	columns map[string]map[string]bool
}

// ProbeSchemaCapabilities inspects INFORMATION_SCHEMA for the optional
// columns. A probe failure degrades to assuming every column exists, so
// a transient startup error never disables fields on a current schema.
func ProbeSchemaCapabilities(db *gorm.DB) *SchemaCapabilities {
	caps := &SchemaCapabilities{columns: make(map[string]map[string]bool)}

	for table, cols := range optionalColumns {
		var present []string
		err := db.Raw(
			`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
			 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
			table,
		).Scan(&present).Error
		if err != nil {
			config.Log.WithError(err).Warnf("schema probe failed for %s, assuming full schema", table)
			continue
		}

		set := make(map[string]bool, len(cols))
		for _, col := range cols {
			for _, p := range present {
				if p == col {
					set[col] = true
					break
				}
			}
			if !set[col] {
				config.Log.Warnf("schema compatibility: column %s.%s missing, writes will omit it", table, col)
			}
		}
		caps.columns[table] = set
	}

	return caps
}

// Has reports whether table.column exists. Unprobed tables (including a
// nil receiver, used by tests) report true.
func (s *SchemaCapabilities) Has(table, column string) bool {
	if s == nil {
		return true
	}
	set, ok := s.columns[table]
	if !ok {
		return true
	}
	return set[column]
}
