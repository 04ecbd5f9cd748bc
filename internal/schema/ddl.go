package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Dialect selects engine-specific DDL.
type Dialect string

const (
	// Redshift adds column encodings and DISTSTYLE AUTO.
	Redshift Dialect = "redshift"

	// Postgres emits plain DDL, used for local runs and integration tests.
	Postgres Dialect = "postgres"
)

// ParseDialect validates a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case Redshift, Postgres:
		return d, nil
	case "":
		return Redshift, nil
	default:
		return "", fmt.Errorf("unknown warehouse dialect %q", s)
	}
}

// ParseTable splits a possibly schema-qualified table name into an
// identifier. Quoting is applied when rendering, so names are taken as is.
func ParseTable(name string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("table %q: at most schema.table", name)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("table %q: empty identifier", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// DropTableSQL returns the DROP statement for table.
func DropTableSQL(table pgx.Identifier) string {
	return "DROP TABLE IF EXISTS " + table.Sanitize()
}

// CreateTableSQL returns the CREATE statement for table.
func CreateTableSQL(table pgx.Identifier, dialect Dialect) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(table.Sanitize())
	sb.WriteString(" (\n")
	for i, c := range TweetColumns {
		sb.WriteString("    ")
		sb.WriteString(pgx.Identifier{c.Name}.Sanitize())
		sb.WriteString(" ")
		sb.WriteString(c.SQLType())
		if dialect == Redshift && c.Encode != "" {
			sb.WriteString(" ENCODE ")
			sb.WriteString(c.Encode)
		}
		if i < len(TweetColumns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")
	if dialect == Redshift {
		sb.WriteString(" DISTSTYLE AUTO")
	}
	return sb.String()
}

// InsertSQL returns a parameterized single-row INSERT covering every column
// in TweetColumns order.
func InsertSQL(table pgx.Identifier) string {
	names := make([]string, len(TweetColumns))
	params := make([]string, len(TweetColumns))
	for i, c := range TweetColumns {
		names[i] = pgx.Identifier{c.Name}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Sanitize(), strings.Join(names, ", "), strings.Join(params, ", "))
}
