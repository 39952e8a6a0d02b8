package discovery

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemasmith/schemasmith/internal/schema"
	"github.com/schemasmith/schemasmith/internal/typemap"
)

func ip(v int) *int { return &v }

func shopRows() []ColumnRow {
	return []ColumnRow{
		{Table: "users", Column: "id", DataType: "bigint", ColumnType: "bigint unsigned", Precision: ip(20), Scale: ip(0), Key: "PRI", Unsigned: true, Ordinal: 1},
		{Table: "users", Column: "email", DataType: "varchar", ColumnType: "varchar(255)", MaxLength: ip(255), Key: "UNI", Ordinal: 2},
		{Table: "users", Column: "role", DataType: "enum", ColumnType: "enum('admin','member','it''s, odd')", MaxLength: ip(9), Ordinal: 3},
		{Table: "users", Column: "active", DataType: "bit", ColumnType: "bit(1)", Precision: ip(1), Ordinal: 4},
		{Table: "users", Column: "location", DataType: "geometry", ColumnType: "geometry", Nullable: true, Ordinal: 5},
		{Table: "posts", Column: "id", DataType: "bigint", ColumnType: "bigint unsigned", Key: "PRI", Unsigned: true, Ordinal: 1},
		{Table: "posts", Column: "user_id", DataType: "bigint", ColumnType: "bigint unsigned", Key: "MUL", Unsigned: true, ReferencedTable: "users", ReferencedColumn: "id", Ordinal: 2},
		{Table: "posts", Column: "price", DataType: "decimal", ColumnType: "decimal(8,2)", Precision: ip(8), Scale: ip(2), Ordinal: 3},
		{Table: "posts", Column: "created_at", DataType: "timestamp", ColumnType: "timestamp", Nullable: true, Ordinal: 4},
	}
}

func TestBuild(t *testing.T) {
	s, err := Build("shop", shopRows(), typemap.ForDatabase("mysql"))
	require.NoError(t, err)
	assert.Equal(t, []string{"posts", "users"}, s.Names())

	users, ok := s.Table("users")
	require.True(t, ok)
	require.Len(t, users.Columns, 5)

	id := users.Columns[0]
	assert.Equal(t, schema.BigInteger, id.Type)
	assert.Equal(t, schema.KeyPrimary, id.Key)
	assert.Nil(t, id.Scale, "scale of 0 is treated as absent")

	role := users.Columns[2]
	assert.Equal(t, schema.String, role.Type)
	assert.Equal(t, []string{"admin", "member", "it's, odd"}, role.Values)
	assert.Nil(t, role.MaxLength, "enum columns carry no max length")

	assert.Equal(t, schema.Bit, users.Columns[3].Type)
	assert.Equal(t, schema.None, users.Columns[4].Type, "unmapped vendor types resolve to NONE")

	posts, _ := s.Table("posts")
	userID, _ := posts.Column("user_id")
	require.NotNil(t, userID.ForeignKey)
	assert.Equal(t, schema.ForeignKey{ReferencedTable: "users", ReferencedColumn: "id"}, *userID.ForeignKey)
	assert.Equal(t, schema.KeyNone, userID.Key, "MUL normalizes to none")

	require.Len(t, posts.Relations(), 1)
	assert.Equal(t, "user", posts.Relations()[0].Name)
}

func TestBuildIndependentOfRowOrder(t *testing.T) {
	types := typemap.ForDatabase("mysql")
	first, err := Build("shop", shopRows(), types)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rows := shopRows()
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		again, err := Build("shop", rows, types)
		require.NoError(t, err)
		assert.True(t, first.Equal(again), "shuffle %d produced a different schema", i)
		users, _ := again.Table("users")
		assert.Equal(t, "id", users.Columns[0].Name, "columns keep ordinal order")
	}
}

func TestBuildMergesDuplicateRows(t *testing.T) {
	rows := shopRows()
	rows = append(rows, ColumnRow{Table: "posts", Column: "user_id", DataType: "bigint", ColumnType: "bigint unsigned", Unsigned: true, Ordinal: 2})
	// The duplicate without foreign key data comes first this time.
	rows[0], rows[len(rows)-1] = rows[len(rows)-1], rows[0]

	s, err := Build("shop", rows, typemap.ForDatabase("mysql"))
	require.NoError(t, err)
	posts, _ := s.Table("posts")
	assert.Len(t, posts.Columns, 4)
	col, _ := posts.Column("user_id")
	assert.True(t, col.IsForeignKey())
}

func TestBuildDanglingReference(t *testing.T) {
	rows := []ColumnRow{
		{Table: "orders", Column: "id", DataType: "int", Key: "PRI", Ordinal: 1},
		{Table: "orders", Column: "customer_id", DataType: "int", ReferencedTable: "customers", ReferencedColumn: "id", Ordinal: 2},
	}
	_, err := Build("shop", rows, typemap.ForDatabase("mysql"))
	var dangling *schema.DanglingReferenceError
	assert.True(t, errors.As(err, &dangling))
}

func TestParseValueList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseValueList("'a','b'"))
	assert.Equal(t, []string{"x y", "z"}, parseValueList("'x y', 'z'"))
}
