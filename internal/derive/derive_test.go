package derive

import (
	"testing"

	"github.com/schemasmith/schemasmith/internal/schema"
)

func ip(v int) *int { return &v }

func TestRule(t *testing.T) {
	tests := []struct {
		name string
		col  schema.Column
		mode Mode
		want string
	}{
		{
			name: "required string with length",
			col:  schema.Column{Table: "users", Name: "name", Type: schema.String, MaxLength: ip(120)},
			want: "required|string|max:120",
		},
		{
			name: "nullable text",
			col:  schema.Column{Table: "posts", Name: "body", Type: schema.String, Nullable: true},
			want: "nullable|string",
		},
		{
			name: "single bit is boolean",
			col:  schema.Column{Table: "users", Name: "active", Type: schema.Bit, Precision: ip(1)},
			want: "required|boolean",
		},
		{
			name: "wide bit is integer",
			col:  schema.Column{Table: "users", Name: "flags", Type: schema.Bit, Precision: ip(8)},
			want: "required|integer",
		},
		{
			name: "datetime format",
			col:  schema.Column{Table: "posts", Name: "published_at", Type: schema.DateTime, Nullable: true},
			want: "nullable|date|date_format:Y-m-d H:i:s",
		},
		{
			name: "time has no date rule",
			col:  schema.Column{Table: "shifts", Name: "starts", Type: schema.Time},
			want: "required|date_format:H:i:s",
		},
		{
			name: "enum membership",
			col:  schema.Column{Table: "posts", Name: "status", Type: schema.String, Values: []string{"draft", "live"}},
			want: "required|string|in:draft,live",
		},
		{
			name: "foreign key exists",
			col: schema.Column{Table: "posts", Name: "user_id", Type: schema.BigInteger,
				ForeignKey: &schema.ForeignKey{ReferencedTable: "users", ReferencedColumn: "id"}},
			want: "required|integer|exists:users,id",
		},
		{
			name: "unique on store",
			col:  schema.Column{Table: "users", Name: "email", Type: schema.String, MaxLength: ip(255), Key: schema.KeyUnique},
			want: "required|string|max:255|unique:users,email",
		},
		{
			name: "unique on update excludes own id",
			col:  schema.Column{Table: "users", Name: "email", Type: schema.String, MaxLength: ip(255), Key: schema.KeyUnique},
			mode: ModeUpdate,
			want: "required|string|max:255|unique:users,email,{id},id",
		},
		{
			name: "none type has presence only",
			col:  schema.Column{Table: "places", Name: "shape", Type: schema.None, Nullable: true},
			want: "nullable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rule(tt.col, tt.mode).String(); got != tt.want {
				t.Errorf("Rule() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	col := schema.Column{Name: "price", Type: schema.Decimal, Key: schema.KeyUnique}
	if got := Describe(col); got != "required|numeric" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestSample(t *testing.T) {
	tests := []struct {
		name      string
		col       schema.Column
		wantExpr  string
		wantModel string
	}{
		{
			name: "foreign key picks existing row",
			col: schema.Column{Name: "category_id", Type: schema.BigInteger,
				ForeignKey: &schema.ForeignKey{ReferencedTable: "product_categories", ReferencedColumn: "id"}},
			wantExpr:  "ProductCategory::all()->pluck('id')->random()",
			wantModel: "ProductCategory",
		},
		{
			name:     "semantic email",
			col:      schema.Column{Name: "email", Type: schema.String, MaxLength: ip(255)},
			wantExpr: "$this->faker->email()",
		},
		{
			name:     "camel case semantic name",
			col:      schema.Column{Name: "phoneNumber", Type: schema.String},
			wantExpr: "$this->faker->e164PhoneNumber()",
		},
		{
			name:     "enum values",
			col:      schema.Column{Name: "status", Type: schema.String, Values: []string{"draft", "live"}},
			wantExpr: "$this->faker->randomElement(['draft', 'live'])",
		},
		{
			name:     "string length",
			col:      schema.Column{Name: "title", Type: schema.String, MaxLength: ip(80)},
			wantExpr: "$this->faker->text(80)",
		},
		{
			name:     "very short string",
			col:      schema.Column{Name: "code", Type: schema.String, MaxLength: ip(2)},
			wantExpr: "$this->faker->lexify(str_repeat('?', 2))",
		},
		{
			name:     "signed tiny integer",
			col:      schema.Column{Name: "rank", Type: schema.TinyInteger},
			wantExpr: "$this->faker->numberBetween(-128, 127)",
		},
		{
			name:     "unsigned big integer",
			col:      schema.Column{Name: "views", Type: schema.BigInteger, Unsigned: true},
			wantExpr: "$this->faker->numberBetween(0, 9223372036854775807)",
		},
		{
			name:     "decimal with precision",
			col:      schema.Column{Name: "amount", Type: schema.Decimal, Precision: ip(5), Scale: ip(2)},
			wantExpr: "$this->faker->randomFloat(2, -999.99, 999.99)",
		},
		{
			name:     "unsigned decimal",
			col:      schema.Column{Name: "amount", Type: schema.Decimal, Precision: ip(4), Scale: ip(1), Unsigned: true},
			wantExpr: "$this->faker->randomFloat(1, 0, 999.9)",
		},
		{
			name:     "decimal without scale uses default range",
			col:      schema.Column{Name: "ratio", Type: schema.Decimal},
			wantExpr: "$this->faker->randomFloat(2, 0, 1000)",
		},
		{
			name:     "single bit",
			col:      schema.Column{Name: "flag", Type: schema.Bit, Precision: ip(1)},
			wantExpr: "$this->faker->boolean",
		},
		{
			name:     "bit field",
			col:      schema.Column{Name: "mask", Type: schema.Bit, Precision: ip(4)},
			wantExpr: "$this->faker->numberBetween(0, 15)",
		},
		{
			name:     "date",
			col:      schema.Column{Name: "born_on", Type: schema.Date},
			wantExpr: "$this->faker->date('Y-m-d')",
		},
		{
			name:     "json placeholder",
			col:      schema.Column{Name: "meta", Type: schema.JSON},
			wantExpr: jsonSample,
		},
		{
			name:     "unknown type",
			col:      schema.Column{Name: "shape", Type: schema.None},
			wantExpr: "''",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sample(tt.col)
			if got.Expr != tt.wantExpr {
				t.Errorf("Expr = %q, want %q", got.Expr, tt.wantExpr)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
		})
	}
}

func TestNumericRangeFromPrecision(t *testing.T) {
	r := NumericRange(schema.Column{Type: schema.Integer, Precision: ip(3), Scale: ip(0)})
	if r.Max != "999" || r.Min != "-999" {
		t.Errorf("unexpected range %+v", r)
	}
	r = NumericRange(schema.Column{Type: schema.Decimal, Precision: ip(2), Scale: ip(2)})
	if r.Max != "0.99" {
		t.Errorf("unexpected max %s", r.Max)
	}
}

func TestTextSampleCapped(t *testing.T) {
	got := Sample(schema.Column{Name: "body", Type: schema.String, MaxLength: ip(65535)})
	if got.Expr != "$this->faker->text(1000)" {
		t.Errorf("expected capped text length, got %s", got.Expr)
	}
}
