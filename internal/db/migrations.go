package db

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	embeddedmigrations "github.com/terraincognita07/ledgerly/migrations"
	"gorm.io/gorm"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_[^/]*\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

type embeddedMigration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

// schemaMigration is one row of the bookkeeping table.
type schemaMigration struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migrator struct {
	database *gorm.DB
	dialect  string
}

func applyEmbeddedMigrations(database *gorm.DB, dialect string) error {
	return (&migrator{database: database, dialect: dialect}).run()
}

func (m *migrator) run() error {
	if err := m.database.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := loadEmbeddedMigrations(m.dialect)
	if err != nil {
		return err
	}

	var applied []string
	if err := m.database.Model(&schemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}

	for _, migration := range pending {
		if slices.Contains(applied, migration.Version) {
			continue
		}
		if err := m.apply(migration); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one migration file and records it in the same transaction.
func (m *migrator) apply(migration embeddedMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	return m.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if columnAlreadyPresent(tx, statement) {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		record := schemaMigration{
			Version:   migration.Version,
			Name:      migration.Name,
			AppliedAt: time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

// columnAlreadyPresent lets ADD COLUMN statements run against databases
// whose schema already carries the column.
func columnAlreadyPresent(tx *gorm.DB, statement string) bool {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false
	}
	return tx.Migrator().HasColumn(unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
}

func loadEmbeddedMigrations(dialect string) ([]embeddedMigration, error) {
	names, err := fs.Glob(embeddedmigrations.Files, path.Join(dialect, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list embedded %s migrations: %w", dialect, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no embedded migrations for dialect %q", dialect)
	}

	migrations := make([]embeddedMigration, 0, len(names))
	for _, fullName := range names {
		fileName := path.Base(fullName)
		matches := migrationFilePattern.FindStringSubmatch(fileName)
		if matches == nil {
			continue
		}
		order, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", fileName, err)
		}

		rawSQL, err := fs.ReadFile(embeddedmigrations.Files, fullName)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		migrations = append(migrations, embeddedMigration{
			Version: matches[1],
			Order:   order,
			Name:    fileName,
			SQL:     string(rawSQL),
		})
	}

	slices.SortFunc(migrations, func(a, b embeddedMigration) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
	for index := 1; index < len(migrations); index++ {
		if migrations[index].Version == migrations[index-1].Version {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s",
				migrations[index].Version, migrations[index-1].Name, migrations[index].Name)
		}
	}
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
