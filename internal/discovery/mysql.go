package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

// MySQL implements Reflector for MySQL and MariaDB through information_schema.
type MySQL struct {
	cfg    *config.SourceConfig
	ignore []string
	types  *typemap.TypeMap
	db     *sql.DB
}

// NewMySQL creates a new MySQL reflector.
func NewMySQL(cfg *config.SourceConfig, ignore []string, types *typemap.TypeMap) *MySQL {
	return &MySQL{cfg: cfg, ignore: ignore, types: types}
}

func (m *MySQL) Connect(ctx context.Context) error {
	dsn := mysql.NewConfig()
	dsn.User = m.cfg.Username
	dsn.Passwd = m.cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dsn.DBName = m.cfg.Database
	if m.cfg.SSL {
		dsn.TLSConfig = "true"
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return fmt.Errorf("opening MySQL connection: %w", err)
	}
	// Reflection issues a single query.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("pinging MySQL: %w", err)
	}

	m.db = db
	return nil
}

func (m *MySQL) Reflect(ctx context.Context) (*schema.Schema, error) {
	if m.db == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	rows, err := queryMySQLColumns(ctx, m.db, m.cfg.Database, m.ignore)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	s, err := Build(m.cfg.Database, rows, m.types)
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return s, nil
}

func (m *MySQL) Close() error {
	if m.db != nil {
		err := m.db.Close()
		m.db = nil
		return err
	}
	return nil
}

const mysqlColumnsQuery = `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.column_type,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.column_key,
			c.is_nullable,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			CASE WHEN c.column_type LIKE '%%unsigned%%' THEN 1 ELSE 0 END AS is_unsigned,
			c.ordinal_position
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema
		  AND t.table_name = c.table_name
		  AND t.table_type = 'BASE TABLE'
		LEFT JOIN information_schema.key_column_usage kcu
		  ON kcu.table_schema = c.table_schema
		  AND kcu.table_name = c.table_name
		  AND kcu.column_name = c.column_name
		  AND kcu.referenced_table_name IS NOT NULL
		WHERE c.table_schema = ?%s
		ORDER BY c.table_name, c.ordinal_position`

func mysqlQuery(ignore []string) (string, []any) {
	args := []any{}
	filter := ""
	if len(ignore) > 0 {
		filter = "\n\t\t  AND c.table_name NOT IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(ignore)), ", ") + ")"
		for _, t := range ignore {
			args = append(args, t)
		}
	}
	return fmt.Sprintf(mysqlColumnsQuery, filter), args
}

func queryMySQLColumns(ctx context.Context, db *sql.DB, database string, ignore []string) ([]ColumnRow, error) {
	query, args := mysqlQuery(ignore)
	rows, err := db.QueryContext(ctx, query, append([]any{database}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var (
			r                        ColumnRow
			maxLen, precision, scale sql.NullInt64
			refTable, refColumn      sql.NullString
			key                      sql.NullString
			nullable                 string
			unsigned                 int
		)
		if err := rows.Scan(&r.Table, &r.Column, &r.DataType, &r.ColumnType,
			&maxLen, &precision, &scale, &key, &nullable,
			&refTable, &refColumn, &unsigned, &r.Ordinal); err != nil {
			return nil, err
		}
		r.MaxLength = intFromNull(maxLen)
		r.Precision = intFromNull(precision)
		r.Scale = intFromNull(scale)
		r.Key = key.String
		r.Nullable = strings.EqualFold(nullable, "YES")
		r.ReferencedTable = refTable.String
		r.ReferencedColumn = refColumn.String
		r.Unsigned = unsigned == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
