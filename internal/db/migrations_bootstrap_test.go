package db

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	embeddedmigrations "github.com/terraincognita07/ledgerly/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "ledgerly-clean.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertLedgerSchemaReconciled(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestOpenSQLiteUpgradesSchemaWithoutTransferGroups(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "ledgerly-legacy.db")
	seedLegacyLedgerSchema(t, databasePath)

	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertLedgerSchemaReconciled(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)

	var migrated struct {
		Category      string `gorm:"column:category"`
		TransferGroup string `gorm:"column:transfer_group"`
	}
	if err := database.
		Table("transactions").
		Select("category", "transfer_group").
		Where("description = ?", "legacy-entry").
		First(&migrated).Error; err != nil {
		t.Fatalf("load migrated legacy transaction: %v", err)
	}
	if migrated.Category != "groceries" {
		t.Fatalf("expected legacy category to survive, got %q", migrated.Category)
	}
	if migrated.TransferGroup != "" {
		t.Fatalf("expected transfer_group default to be empty, got %q", migrated.TransferGroup)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "ledgerly-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForMigrationBootstrapTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Options{Driver: "mysql"}); err == nil {
		t.Fatal("expected unknown driver to be rejected")
	}
}

func TestSplitSQLStatementsDropsBlankParts(t *testing.T) {
	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n;  CREATE INDEX i ON a(id) ;\n")
	expected := []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX i ON a(id)"}
	if !reflect.DeepEqual(statements, expected) {
		t.Fatalf("unexpected statements: %#v", statements)
	}
}

func TestEmbeddedMigrationsMatchAcrossDialects(t *testing.T) {
	sqliteVersions := embeddedMigrationVersionsForTest(t, DialectSQLite)
	postgresVersions := embeddedMigrationVersionsForTest(t, DialectPostgres)
	if !reflect.DeepEqual(sqliteVersions, postgresVersions) {
		t.Fatalf("dialect migrations diverged: sqlite=%v postgres=%v", sqliteVersions, postgresVersions)
	}
}

func openSQLiteForMigrationBootstrapTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

// seedLegacyLedgerSchema builds a database from the first two migrations
// only, as a deployment from before transfers existed would have.
func seedLegacyLedgerSchema(t *testing.T, databasePath string) {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)", databasePath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open legacy sqlite: %v", err)
	}

	for _, name := range []string{"001_init.sql", "002_ledger.sql"} {
		rawSQL, err := fs.ReadFile(embeddedmigrations.Files, path.Join(DialectSQLite, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		for _, statement := range splitSQLStatements(string(rawSQL)) {
			if err := database.Exec(statement).Error; err != nil {
				t.Fatalf("apply %s: %v", name, err)
			}
		}
	}

	now := time.Now().UTC()
	if err := database.Exec(
		`INSERT INTO users (email, display_name, password_hash, plan, created_at) VALUES (?, ?, ?, ?, ?)`,
		"legacy@example.com", "Legacy", "legacy-hash", "free", now,
	).Error; err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}
	if err := database.Exec(
		`INSERT INTO accounts (user_id, type, name, created_at, updated_at) VALUES (1, 'checking', 'Checking', ?, ?)`,
		now, now,
	).Error; err != nil {
		t.Fatalf("insert legacy account: %v", err)
	}
	if err := database.Exec(
		`INSERT INTO transactions (user_id, account_id, type, amount_cents, category, date, description) VALUES (1, 1, 'expense', 1250, 'groceries', ?, 'legacy-entry')`,
		now,
	).Error; err != nil {
		t.Fatalf("insert legacy transaction: %v", err)
	}

	if database.Migrator().HasTable("schema_migrations") {
		t.Fatal("expected legacy schema to not have schema_migrations table")
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open legacy sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close legacy sql db: %v", err)
	}
}

func assertLedgerSchemaReconciled(t *testing.T, database *gorm.DB) {
	t.Helper()

	expected := map[string][]string{
		"users":               {"email", "display_name", "password_hash", "plan"},
		"sessions":            {"token_hash", "user_id", "expires_at"},
		"verification_tokens": {"id", "email", "purpose", "expires_at"},
		"accounts":            {"type", "name", "initial_balance_cents", "balance_cents"},
		"transactions":        {"account_id", "type", "amount_cents", "category", "date", "recurrence", "transfer_group"},
		"tags":                {"user_id", "name"},
		"transaction_tags":    {"transaction_id", "tag_id"},
	}
	for table, columns := range expected {
		present := loadTableColumns(t, database, table)
		for _, column := range columns {
			if _, exists := present[column]; !exists {
				t.Fatalf("expected %s.%s column to exist after migrations", table, column)
			}
		}
	}

	indexSQL := loadSQLiteObjectSQL(t, database, "index", "uidx_accounts_user_type")
	if !strings.Contains(strings.ToLower(indexSQL), "unique") {
		t.Fatalf("expected unique account type index, got %q", indexSQL)
	}
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	expectedVersions := embeddedMigrationVersionsForTest(t, DialectSQLite)
	actualVersions := make([]string, 0)

	var rows []struct {
		Version string `gorm:"column:version"`
	}
	if err := database.Raw(`SELECT version FROM schema_migrations ORDER BY version ASC`).Scan(&rows).Error; err != nil {
		t.Fatalf("load applied migration versions: %v", err)
	}
	for _, row := range rows {
		actualVersions = append(actualVersions, row.Version)
	}

	if !reflect.DeepEqual(expectedVersions, actualVersions) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expectedVersions, actualVersions)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	escapedTable := strings.ReplaceAll(tableName, `"`, `""`)
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, escapedTable)

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(strings.TrimSpace(row.Name))] = struct{}{}
	}
	return columns
}

func loadSQLiteObjectSQL(t *testing.T, database *gorm.DB, objectType string, objectName string) string {
	t.Helper()

	var row struct {
		SQL string `gorm:"column:sql"`
	}
	if err := database.Raw(
		`SELECT sql FROM sqlite_master WHERE type = ? AND name = ?`,
		objectType,
		objectName,
	).Scan(&row).Error; err != nil {
		t.Fatalf("load sqlite master sql for %s %s: %v", objectType, objectName, err)
	}
	return row.SQL
}

func embeddedMigrationVersionsForTest(t *testing.T, dialect string) []string {
	t.Helper()

	migrations, err := loadEmbeddedMigrations(dialect)
	if err != nil {
		t.Fatalf("load embedded %s migrations: %v", dialect, err)
	}

	versions := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		versions = append(versions, migration.Version)
	}
	return versions
}
