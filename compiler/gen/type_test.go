package gen

import (
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/asyncdao"
	"github.com/syssam/asyncdao/compiler/load"
	"github.com/syssam/asyncdao/schema/field"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		in, pascal, camel string
	}{
		{"someId", "SomeID", "someID"},
		{"someJsonObject", "SomeJSONObject", "someJSONObject"},
		{"some_json_array", "SomeJSONArray", "someJSONArray"},
		{"id", "ID", "id"},
		{"URL", "URL", "url"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.pascal, pascal(tt.in))
			assert.Equal(t, tt.camel, camel(tt.in))
		})
	}

	assert.Equal(t, "User", singular("Users"))
	assert.Equal(t, "Something", singular("Something"))
	assert.Equal(t, "OrderItem", singular("OrderItems"))
	assert.Equal(t, "UserID", singular("UserID"))

	assert.Equal(t, "s", receiver("Something"))
	assert.Equal(t, "somethingcomposite", packageName("somethingComposite"))
	assert.Equal(t, "auditlog", packageName("audit_log"))
}

func testTable() *load.Table {
	def := "0"
	return &load.Table{
		Name:       "something",
		PrimaryKey: []string{"someId"},
		UniqueKeys: [][]string{{"someString"}, {"someRegularNumber", "someHugeNumber"}},
		Columns: []*load.Column{
			{Name: "someId", Type: "int(11)", AutoIncrement: true},
			{Name: "someString", Type: "varchar(45)", Nullable: true},
			{Name: "someHugeNumber", Type: "bigint(20)"},
			{Name: "someRegularNumber", Type: "int(11)", Default: &def},
			{Name: "someJsonObject", Type: "varchar(45)", Converter: load.ConverterJSONObject, Nullable: true},
			{Name: "someBlob", Type: "blob", Nullable: true},
			{Name: "someEnum", Type: "enum('FOO','BAR')"},
			{Name: "record", Type: "varchar(10)"},
		},
	}
}

func TestNewType(t *testing.T) {
	typ, err := NewType(&Config{}, "mysql", testTable())
	require.NoError(t, err)

	assert.Equal(t, "Something", typ.Name)
	assert.Equal(t, "something", typ.PackageDir())
	assert.Equal(t, "SomethingDAO", typ.DAOName())
	assert.Equal(t, "NewSomethingDAO", typ.DAOConstructor())
	assert.Equal(t, "MapSomething", typ.MapperName())
	assert.True(t, typ.HasPrimaryKey())
	assert.False(t, typ.HasCompositeKey())
	assert.Empty(t, typ.InsertReturningUnsupported())

	id, ok := typ.Field("someId")
	require.True(t, ok)
	assert.True(t, id.PK)
	assert.Equal(t, "SomeID", id.StructField)
	assert.Equal(t, "FieldSomeID", id.Constant())
	assert.Equal(t, field.TypeInt32, id.Type)
	assert.True(t, id.Pointer(), "auto increment columns are pointers")

	huge, _ := typ.Field("someHugeNumber")
	assert.False(t, huge.Pointer())
	regular, _ := typ.Field("someRegularNumber")
	assert.True(t, regular.Pointer(), "columns with defaults are pointers")
	obj, _ := typ.Field("someJsonObject")
	assert.Equal(t, field.TypeJSONObject, obj.Type)
	assert.False(t, obj.Pointer())
	blob, _ := typ.Field("someBlob")
	assert.False(t, blob.Pointer())

	enum, _ := typ.Field("someEnum")
	assert.True(t, enum.IsEnum())
	assert.Equal(t, "SomethingSomeEnum", enum.EnumTypeName())
	assert.Equal(t, []Enum{{Name: "SomethingSomeEnumFoo", Value: "FOO"}, {Name: "SomethingSomeEnumBar", Value: "BAR"}}, enum.Enums)
	assert.Equal(t, []string{"FOO", "BAR"}, enum.EnumValues())

	rec, _ := typ.Field("record")
	assert.Equal(t, "RecordField", rec.StructField, "fields may not shadow POJO methods")

	var unique []string
	for _, f := range typ.UniqueFields() {
		unique = append(unique, f.Name)
	}
	assert.Equal(t, []string{"someId", "someString"}, unique)
	assert.Len(t, typ.NonKeyFields(), len(typ.Fields)-1)
	assert.Len(t, typ.EnumFields(), 1)
}

func TestInsertReturningUnsupported(t *testing.T) {
	composite := &load.Table{
		Name:       "somethingComposite",
		PrimaryKey: []string{"a", "b"},
		Columns:    []*load.Column{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
	}
	typ, err := NewType(&Config{}, "mysql", composite)
	require.NoError(t, err)
	assert.Equal(t, asyncdao.ReasonCompositeKey, typ.InsertReturningUnsupported())

	stringKey := &load.Table{
		Name:       "codes",
		PrimaryKey: []string{"code"},
		Columns:    []*load.Column{{Name: "code", Type: "varchar(8)"}},
	}
	typ, err = NewType(&Config{}, "mysql", stringKey)
	require.NoError(t, err)
	assert.Equal(t, "Code", typ.Name)
	assert.Equal(t, asyncdao.ReasonNonIntegerKey, typ.InsertReturningUnsupported())

	noKey := &load.Table{Name: "logs", Columns: []*load.Column{{Name: "line", Type: "text"}}}
	typ, err = NewType(&Config{}, "mysql", noKey)
	require.NoError(t, err)
	assert.False(t, typ.HasPrimaryKey())
	assert.Empty(t, typ.InsertReturningUnsupported())
}

func TestNewTypeErrors(t *testing.T) {
	_, err := NewType(&Config{}, "mysql", &load.Table{Name: "type", Columns: []*load.Column{{Name: "a", Type: "int"}}})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))

	_, err = NewType(&Config{}, "mysql", &load.Table{Name: "t", Columns: []*load.Column{
		{Name: "some_id", Type: "int"},
		{Name: "someId", Type: "int"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestNewGraph(t *testing.T) {
	s := &load.Schema{Name: "vertx", Dialect: "mysql", Tables: []*load.Table{testTable()}}
	g, err := NewGraph(&Config{}, s)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "mysql", g.Dialect)

	s.Tables = append(s.Tables, &load.Table{Name: "somethings", Columns: []*load.Column{{Name: "a", Type: "int"}}})
	_, err = NewGraph(&Config{}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")

	_, err = NewGraph(&Config{}, nil)
	assert.True(t, IsSchemaError(err))

	_, err = NewGraph(&Config{}, &load.Schema{Dialect: "oracle"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestHelperTypes(t *testing.T) {
	typ, err := NewType(&Config{Package: "github.com/acme/app/vertx"}, "mysql", testTable())
	require.NoError(t, err)
	h := NewHelper(&Graph{Config: &Config{Flavor: stubFlavor{}}})

	render := func(c jen.Code) string { return jen.Var().Id("x").Add(c).GoString() }
	id, _ := typ.Field("someId")
	assert.Equal(t, "var x *int32", render(h.GoType(id)))
	assert.Equal(t, "var x int32", render(h.KeyType(typ)))
	blob, _ := typ.Field("someBlob")
	assert.Equal(t, "var x []byte", render(h.GoType(blob)))
	enum, _ := typ.Field("someEnum")
	assert.Equal(t, "var x SomethingSomeEnum", render(h.GoType(enum)))
	assert.Equal(t, "var x = asyncdao.ReasonCompositeKey", jen.Var().Id("x").Op("=").Add(h.Reason(asyncdao.ReasonCompositeKey)).GoString())
	assert.Equal(t, `var x = "custom"`, jen.Var().Id("x").Op("=").Add(h.Reason("custom")).GoString())

	assert.True(t, h.Comparable(id))
	assert.False(t, h.Comparable(blob))
	obj, _ := typ.Field("someJsonObject")
	assert.False(t, h.Comparable(obj))
}

type stubFlavor struct{}

func (stubFlavor) Name() string                               { return "stub" }
func (stubFlavor) RuntimePkg() string                         { return "example.com/stub" }
func (stubFlavor) FetchBy(*Helper, *Type, *Field) jen.Code    { return jen.Null() }
func (stubFlavor) FetchOneBy(*Helper, *Type, *Field) jen.Code { return jen.Null() }
