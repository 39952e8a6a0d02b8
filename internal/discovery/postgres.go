package discovery

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

// Postgres implements Reflector for PostgreSQL databases.
type Postgres struct {
	cfg    *config.SourceConfig
	ignore []string
	types  *typemap.TypeMap
	pool   *pgxpool.Pool
	schema string // pg schema to reflect, defaults to "public"
}

// NewPostgres creates a new PostgreSQL reflector.
func NewPostgres(cfg *config.SourceConfig, ignore []string, types *typemap.TypeMap) *Postgres {
	s := cfg.Schema
	if s == "" {
		s = "public"
	}
	return &Postgres{cfg: cfg, ignore: ignore, types: types, schema: s}
}

func (p *Postgres) Connect(ctx context.Context) error {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s default_query_exec_mode=simple_protocol",
		p.cfg.Host, p.cfg.Port, p.cfg.Database, p.cfg.Username, p.cfg.Password,
	)
	if p.cfg.SSL {
		connStr += " sslmode=require"
	} else {
		connStr += " sslmode=disable"
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("parsing connection string: %w", err)
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging PostgreSQL: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Postgres) Reflect(ctx context.Context) (*schema.Schema, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	rows, err := p.queryColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	s, err := Build(p.cfg.Database, rows, p.types)
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return s, nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

// Enum labels are rendered as enum('a','b') and booleans report precision 1 so the
// rows read exactly like the MySQL catalog.
const postgresColumnsQuery = `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			CASE WHEN e.labels IS NOT NULL THEN 'enum(' || e.labels || ')' ELSE c.udt_name END AS column_type,
			c.character_maximum_length,
			CASE WHEN c.data_type = 'boolean' THEN 1 ELSE c.numeric_precision END AS numeric_precision,
			c.numeric_scale,
			COALESCE(k.key_type, '') AS column_key,
			c.is_nullable,
			fk.referenced_table,
			fk.referenced_column,
			c.ordinal_position
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema
		  AND t.table_name = c.table_name
		  AND t.table_type = 'BASE TABLE'
		LEFT JOIN LATERAL (
			SELECT string_agg(quote_literal(en.enumlabel), ',' ORDER BY en.enumsortorder) AS labels
			FROM pg_type ty
			JOIN pg_namespace n ON n.oid = ty.typnamespace
			JOIN pg_enum en ON en.enumtypid = ty.oid
			WHERE ty.typname = c.udt_name AND n.nspname = c.udt_schema
		) e ON true
		LEFT JOIN LATERAL (
			SELECT CASE
				WHEN bool_or(tc.constraint_type = 'PRIMARY KEY') THEN 'PRI'
				WHEN bool_or(tc.constraint_type = 'UNIQUE') THEN 'UNI'
			END AS key_type
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON kcu.constraint_name = tc.constraint_name
			  AND kcu.constraint_schema = tc.constraint_schema
			  AND kcu.table_name = tc.table_name
			WHERE tc.table_schema = c.table_schema
			  AND tc.table_name = c.table_name
			  AND kcu.column_name = c.column_name
			  AND (tc.constraint_type = 'PRIMARY KEY'
			    OR (tc.constraint_type = 'UNIQUE' AND (
			      SELECT count(*) FROM information_schema.key_column_usage k2
			      WHERE k2.constraint_name = tc.constraint_name
			        AND k2.constraint_schema = tc.constraint_schema) = 1))
		) k ON true
		LEFT JOIN LATERAL (
			SELECT ccu.table_name AS referenced_table, ccu.column_name AS referenced_column
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON kcu.constraint_name = tc.constraint_name
			  AND kcu.constraint_schema = tc.constraint_schema
			JOIN information_schema.constraint_column_usage ccu
			  ON ccu.constraint_name = tc.constraint_name
			  AND ccu.constraint_schema = tc.constraint_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
			  AND tc.table_schema = c.table_schema
			  AND tc.table_name = c.table_name
			  AND kcu.column_name = c.column_name
			LIMIT 1
		) fk ON true
		WHERE c.table_schema = $1
		  AND NOT (c.table_name = ANY($2))
		ORDER BY c.table_name, c.ordinal_position`

func (p *Postgres) queryColumns(ctx context.Context) ([]ColumnRow, error) {
	ignore := p.ignore
	if ignore == nil {
		ignore = []string{}
	}
	rows, err := p.pool.Query(ctx, postgresColumnsQuery, p.schema, ignore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ColumnRow
	for rows.Next() {
		var (
			r                        ColumnRow
			maxLen, precision, scale *int
			refTable, refColumn      *string
			nullable                 string
		)
		if err := rows.Scan(&r.Table, &r.Column, &r.DataType, &r.ColumnType,
			&maxLen, &precision, &scale, &r.Key, &nullable,
			&refTable, &refColumn, &r.Ordinal); err != nil {
			return nil, err
		}
		r.MaxLength = maxLen
		r.Precision = precision
		r.Scale = scale
		r.Nullable = nullable == "YES"
		if refTable != nil && refColumn != nil {
			r.ReferencedTable = *refTable
			r.ReferencedColumn = *refColumn
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
