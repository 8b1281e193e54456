package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// genPackage renders the table package of t: the column constants and
// the dao.Table description the DAO runs on.
func (g *JenniferGenerator) genPackage(t *Type) *jen.File {
	f := g.newFilePath(t.Package(), t.PackageDir())
	f.PackageComment(fmt.Sprintf("Package %s holds the column names of the %s table.", t.PackageDir(), t.TableName()))

	f.Const().DefsFunc(func(grp *jen.Group) {
		grp.Commentf("TableName holds the table name of the %s in the database.", t.Name)
		grp.Id("TableName").Op("=").Lit(t.TableName())
		for _, fld := range t.Fields {
			grp.Commentf("%s holds the string denoting the %s column.", fld.Constant(), fld.Name)
			grp.Id(fld.Constant()).Op("=").Lit(fld.Name)
		}
	})

	f.Commentf("Columns holds all SQL columns of the %s table.", t.TableName())
	f.Var().Id("Columns").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, fld := range t.Fields {
			grp.Line().Id(fld.Constant())
		}
		grp.Line()
	})

	if t.HasPrimaryKey() {
		f.Comment("PrimaryKey holds the primary key columns in key order.")
		f.Var().Id("PrimaryKey").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
			for _, fld := range t.PrimaryKey {
				grp.Id(fld.Constant())
			}
		})
	}

	f.Commentf("Table describes the %s table.", t.TableName())
	f.Var().Id("Table").Op("=").Op("&").Qual(DAOPkg, "Table").Values(jen.DictFunc(func(d jen.Dict) {
		d[jen.Id("Name")] = jen.Id("TableName")
		d[jen.Id("Columns")] = jen.Id("Columns")
		if t.HasPrimaryKey() {
			d[jen.Id("PrimaryKey")] = jen.Id("PrimaryKey")
		}
	}))

	f.Comment("ValidColumn reports if the column name is valid (part of the table columns).")
	f.Func().Id("ValidColumn").Params(jen.Id("column").String()).Bool().Block(
		jen.Return(jen.Qual("slices", "Contains").Call(jen.Id("Columns"), jen.Id("column"))),
	)
	return f
}
