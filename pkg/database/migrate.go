package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin/pkg/config"
)

type column struct {
	name     string
	sqlite   string
	postgres string
}

type table struct {
	name        string
	columns     []column
	constraints []string
	indexes     []string
}

func pk() column {
	return column{name: "id", sqlite: "INTEGER PRIMARY KEY AUTOINCREMENT", postgres: "BIGSERIAL PRIMARY KEY"}
}

func same(name, def string) column {
	return column{name: name, sqlite: def, postgres: def}
}

func ref(name, target string) column {
	def := fmt.Sprintf("REFERENCES %s(id) ON DELETE RESTRICT", target)
	return column{name: name, sqlite: "INTEGER " + def, postgres: "BIGINT " + def}
}

// Schema is the full table set, parents before children.
var schema = []table{
	{
		name: "academies",
		columns: []column{
			pk(),
			same("name", "TEXT NOT NULL UNIQUE"),
			same("address", "TEXT"),
			same("responsible", "TEXT"),
			same("created_at", "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"),
		},
	},
	{
		name: "modalities",
		columns: []column{
			pk(),
			same("name", "TEXT NOT NULL UNIQUE"),
			same("category", "TEXT"),
		},
	},
	{
		name: "students",
		columns: []column{
			pk(),
			same("full_name", "TEXT NOT NULL"),
			same("birth_date", "DATE"),
			same("national_id", "TEXT NOT NULL UNIQUE"),
			same("national_id_formatted", "TEXT NOT NULL DEFAULT ''"),
			same("phone", "TEXT"),
			same("guardian_name", "TEXT"),
			same("grade", "TEXT"),
			same("active", "BOOLEAN NOT NULL DEFAULT TRUE"),
			same("registered_at", "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"),
			ref("academy_id", "academies"),
		},
		indexes: []string{"CREATE INDEX IF NOT EXISTS idx_students_academy ON students(academy_id)"},
	},
	{
		name: "coaches",
		columns: []column{
			pk(),
			same("full_name", "TEXT NOT NULL"),
			same("phone", "TEXT"),
			same("certification", "TEXT"),
			ref("academy_id", "academies"),
			ref("modality_id", "modalities"),
		},
		indexes: []string{"CREATE INDEX IF NOT EXISTS idx_coaches_modality ON coaches(modality_id)"},
	},
	{
		name: "enrollments",
		columns: []column{
			pk(),
			same("enrollment_number", "TEXT NOT NULL UNIQUE"),
			same("grade", "TEXT"),
			same("enrolled_at", "DATE NOT NULL DEFAULT CURRENT_DATE"),
			ref("student_id", "students"),
			ref("modality_id", "modalities"),
		},
		constraints: []string{"UNIQUE (student_id, modality_id)"},
		indexes:     []string{"CREATE INDEX IF NOT EXISTS idx_enrollments_modality ON enrollments(modality_id)"},
	},
	{
		name: "users",
		columns: []column{
			pk(),
			same("username", "TEXT NOT NULL UNIQUE"),
			same("password_hash", "TEXT NOT NULL"),
			same("role", "TEXT NOT NULL DEFAULT 'VIEWER'"),
			same("created_at", "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"),
		},
	},
}

// Migrate creates missing tables and adds columns missing from tables created
// by older releases. It returns the "table.column" names it added.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := db.DriverName()

	var added []string
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, createTableSQL(t, driver)); err != nil {
			return added, fmt.Errorf("create table %s: %w", t.name, err)
		}

		existing, err := existingColumns(ctx, db, t.name)
		if err != nil {
			return added, err
		}
		for _, col := range missingColumns(t, existing) {
			if _, err := db.ExecContext(ctx, addColumnSQL(t.name, col, driver)); err != nil {
				return added, fmt.Errorf("add column %s.%s: %w", t.name, col.name, err)
			}
			logger.Info("column added", zap.String("table", t.name), zap.String("column", col.name))
			added = append(added, t.name+"."+col.name)
		}

		for _, idx := range t.indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return added, fmt.Errorf("create index on %s: %w", t.name, err)
			}
		}
	}
	return added, nil
}

func definition(c column, driver string) string {
	if driver == config.DriverPostgres {
		return c.postgres
	}
	return c.sqlite
}

func createTableSQL(t table, driver string) string {
	parts := make([]string, 0, len(t.columns)+len(t.constraints))
	for _, c := range t.columns {
		parts = append(parts, c.name+" "+definition(c, driver))
	}
	parts = append(parts, t.constraints...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(parts, ", "))
}

// addColumnSQL relaxes NOT NULL without a default and drops UNIQUE, neither of
// which ALTER TABLE ADD COLUMN accepts on populated tables. SQLite also rejects
// non-constant defaults there, so existing rows get the epoch instead.
func addColumnSQL(tableName string, c column, driver string) string {
	def := definition(c, driver)
	if strings.Contains(def, "NOT NULL") && !strings.Contains(def, "DEFAULT") {
		def = strings.Replace(def, " NOT NULL", "", 1)
	}
	def = strings.Replace(def, " UNIQUE", "", 1)
	if driver != config.DriverPostgres {
		def = strings.NewReplacer(
			"DEFAULT CURRENT_TIMESTAMP", "DEFAULT '1970-01-01 00:00:00'",
			"DEFAULT CURRENT_DATE", "DEFAULT '1970-01-01'",
		).Replace(def)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, c.name, def)
}

func existingColumns(ctx context.Context, db *sqlx.DB, tableName string) (map[string]bool, error) {
	var names []string
	var err error
	if db.DriverName() == config.DriverPostgres {
		err = db.SelectContext(ctx, &names,
			`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`, tableName)
	} else {
		err = db.SelectContext(ctx, &names, `SELECT name FROM pragma_table_info(?)`, tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("inspect columns of %s: %w", tableName, err)
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set, nil
}

func missingColumns(t table, existing map[string]bool) []column {
	var missing []column
	for _, c := range t.columns {
		if c.name == "id" || existing[c.name] {
			continue
		}
		missing = append(missing, c)
	}
	return missing
}

// Tables lists managed table names in creation order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}
