package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/asyncdao/schema/field"
)

// genPOJO renders the data class of t: the struct, its enums and key
// type, the Record method, the row mapper and the JSON helpers.
func (g *JenniferGenerator) genPOJO(t *Type) *jen.File {
	f := g.newFile()
	for _, fld := range t.EnumFields() {
		g.genEnum(f, fld)
	}

	f.Commentf("%s is a row of the %s table.", t.Name, t.TableName())
	if c := t.Table.Comment; c != "" {
		f.Comment("")
		f.Comment(c)
	}
	f.Type().Id(t.Name).StructFunc(func(grp *jen.Group) {
		for _, fld := range t.Fields {
			if c := fld.Comment(); c != "" {
				grp.Comment(c)
			}
			grp.Id(fld.StructField).Add(g.helper.GoType(fld)).Tag(map[string]string{"json": fld.JSONName + ",omitempty"})
		}
	})

	if t.HasCompositeKey() {
		g.genKey(f, t)
	}
	g.genRecord(f, t)
	g.genMapper(f, t)
	if g.graph.JSON {
		for _, fld := range t.Fields {
			if !fld.Supported() {
				g.helper.Logger().Warn("omitting unrecognized column type from JSON helpers",
					"table", t.TableName(), "column", fld.Name, "type", fld.Column.Type)
			}
		}
		g.genFromJSON(f, t)
		g.genToJSON(f, t)
	}
	return f
}

func (g *JenniferGenerator) genEnum(f *jen.File, fld *Field) {
	name := fld.EnumTypeName()
	f.Commentf("%s is the type of the %s column.", name, fld.Name)
	f.Type().Id(name).String()

	f.Commentf("%s values.", name)
	f.Const().DefsFunc(func(grp *jen.Group) {
		for _, e := range fld.Enums {
			grp.Id(e.Name).Id(name).Op("=").Lit(e.Value)
		}
	})

	f.Commentf("%s lists all %s values.", fld.EnumValuesName(), name)
	f.Var().Id(fld.EnumValuesName()).Op("=").Index().Id(name).ValuesFunc(func(grp *jen.Group) {
		for _, e := range fld.Enums {
			grp.Id(e.Name)
		}
	})

	f.Func().Params(jen.Id("e").Id(name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("e"))),
	)
}

func (g *JenniferGenerator) genKey(f *jen.File, t *Type) {
	f.Commentf("%s is the primary key of the %s table.", t.KeyName(), t.TableName())
	f.Type().Id(t.KeyName()).StructFunc(func(grp *jen.Group) {
		for _, fld := range t.PrimaryKey {
			grp.Id(fld.StructField).Add(g.helper.BaseType(fld))
		}
	})

	f.Comment("KeyValues implements dao.Key.")
	f.Func().Params(jen.Id("k").Id(t.KeyName())).Id("KeyValues").Params().Index().Any().Block(
		jen.Return(jen.Index().Any().ValuesFunc(func(grp *jen.Group) {
			for _, fld := range t.PrimaryKey {
				grp.Id("k").Dot(fld.StructField)
			}
		})),
	)
}

func (g *JenniferGenerator) genRecord(f *jen.File, t *Type) {
	recv := t.Receiver()
	var body []jen.Code
	for _, fld := range t.Fields {
		var conv string
		switch {
		case fld.Handler != nil:
			continue
		case fld.Type == field.TypeJSONObject:
			conv = "ObjectConverter"
		case fld.Type == field.TypeJSONArray:
			conv = "ArrayConverter"
		default:
			continue
		}
		body = append(body,
			jen.List(jen.Id(fld.Var()), jen.Err()).Op(":=").Qual(JSONPkg, conv).Values().Dot("To").Call(jen.Id(recv).Dot(fld.StructField)),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		)
	}
	body = append(body, jen.Return(
		jen.Map(jen.String()).Any().Values(jen.DictFunc(func(d jen.Dict) {
			for _, fld := range t.Fields {
				d[jen.Qual(t.Package(), fld.Constant())] = g.recordValue(fld, recv)
			}
		})),
		jen.Nil(),
	))

	f.Comment("Record implements dao.Pojo.")
	f.Func().Params(jen.Id(recv).Op("*").Id(t.Name)).Id("Record").Params().
		Params(jen.Map(jen.String()).Any(), jen.Error()).Block(body...)
}

func (g *JenniferGenerator) recordValue(fld *Field, recv string) jen.Code {
	v := jen.Id(recv).Dot(fld.StructField)
	switch {
	case fld.Handler != nil:
		return fld.Handler.Write(fld, v)
	case fld.Type == field.TypeJSONObject, fld.Type == field.TypeJSONArray:
		return jen.Id(fld.Var())
	case fld.Pointer():
		return jen.Qual(JSONPkg, "Deref").Call(v)
	case fld.Type == field.TypeBytes:
		return jen.Qual(JSONPkg, "Bytes").Call(v)
	}
	return v
}

func (g *JenniferGenerator) genMapper(f *jen.File, t *Type) {
	recv, r := t.Receiver(), readerVar(t)
	f.Commentf("%s maps a row of the %s table to a %s.", t.MapperName(), t.TableName(), t.Name)
	f.Func().Id(t.MapperName()).Params(jen.Id("row").Qual(JSONPkg, "Object")).
		Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id(r).Op(":=").Qual(JSONPkg, "NewRowReader").Call(jen.Id("row")),
		jen.Id(recv).Op(":=").Op("&").Id(t.Name).Values(jen.DictFunc(func(d jen.Dict) {
			for _, fld := range t.Fields {
				d[jen.Id(fld.StructField)] = g.readValue(fld, jen.Id(r), jen.Qual(t.Package(), fld.Constant()))
			}
		})),
		jen.If(jen.Err().Op(":=").Id(r).Dot("Err").Call(), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id(recv), jen.Nil()),
	)
}

// readerVar names the jsonx.Reader of generated mappers, avoiding the
// receiver name.
func readerVar(t *Type) string {
	if t.Receiver() == "r" {
		return "rd"
	}
	return "r"
}

// readValue renders the read of fld from the reader r under key, with the
// type of the POJO field.
func (g *JenniferGenerator) readValue(fld *Field, r, key jen.Code) jen.Code {
	if fld.Handler != nil {
		return fld.Handler.Read(fld, r, key)
	}
	var read *jen.Statement
	if fld.IsEnum() {
		read = jen.Qual(JSONPkg, "ReadEnum").Call(r, key, jen.Id(fld.EnumValuesName()))
	} else {
		read = jen.Add(r).Dot(fld.ReaderMethod()).Call(key)
	}
	switch fld.Type {
	case field.TypeBytes, field.TypeJSONObject, field.TypeJSONArray, field.TypeOther:
		return read
	}
	if fld.Pointer() {
		return read
	}
	return jen.Qual(JSONPkg, "Value").Call(read)
}

func (g *JenniferGenerator) genFromJSON(f *jen.File, t *Type) {
	recv, r := t.Receiver(), readerVar(t)
	f.Commentf("FromJSON sets the fields of %s from a JSON document. Keys missing from", recv)
	f.Comment("obj leave the fields at their zero value.")
	f.Func().Params(jen.Id(recv).Op("*").Id(t.Name)).Id("FromJSON").Params(jen.Id("obj").Qual(JSONPkg, "Object")).Error().BlockFunc(func(grp *jen.Group) {
		grp.Id(r).Op(":=").Qual(JSONPkg, "NewReader").Call(jen.Id("obj"))
		for _, fld := range t.Fields {
			if !fld.Supported() {
				grp.Commentf("Omitting unrecognized type %s for column %s!", fld.Column.Type, fld.Name)
				continue
			}
			grp.Id(recv).Dot(fld.StructField).Op("=").Add(g.readValue(fld, jen.Id(r), jen.Lit(fld.JSONName)))
		}
		grp.Return(jen.Id(r).Dot("Err").Call())
	})

	name := "New" + t.Name + "FromJSON"
	f.Commentf("%s returns a %s read from a JSON document.", name, t.Name)
	f.Func().Id(name).Params(jen.Id("obj").Qual(JSONPkg, "Object")).Params(jen.Op("*").Id(t.Name), jen.Error()).Block(
		jen.Id(recv).Op(":=").Op("&").Id(t.Name).Values(),
		jen.If(jen.Err().Op(":=").Id(recv).Dot("FromJSON").Call(jen.Id("obj")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id(recv), jen.Nil()),
	)
}

func (g *JenniferGenerator) genToJSON(f *jen.File, t *Type) {
	recv := t.Receiver()
	f.Commentf("ToJSON returns %s as a JSON document. Unset fields are written as null.", recv)
	f.Func().Params(jen.Id(recv).Op("*").Id(t.Name)).Id("ToJSON").Params().Qual(JSONPkg, "Object").BlockFunc(func(grp *jen.Group) {
		grp.Id("obj").Op(":=").Qual(JSONPkg, "Object").Values()
		for _, fld := range t.Fields {
			if !fld.Supported() {
				grp.Commentf("Omitting unrecognized type %s for column %s!", fld.Column.Type, fld.Name)
				continue
			}
			grp.Id("obj").Dot("Put").Call(jen.Lit(fld.JSONName), g.jsonValue(fld, recv))
		}
		grp.Return(jen.Id("obj"))
	})
}

func (g *JenniferGenerator) jsonValue(fld *Field, recv string) jen.Code {
	v := jen.Id(recv).Dot(fld.StructField)
	switch {
	case fld.Handler != nil:
		return fld.Handler.Write(fld, v)
	case fld.Type == field.TypeTime && fld.Pointer():
		return jen.Qual(JSONPkg, "Time").Call(v)
	case fld.Type == field.TypeTime:
		return jen.Qual(JSONPkg, "Time").Call(jen.Op("&").Add(v))
	case fld.Pointer():
		return jen.Qual(JSONPkg, "Deref").Call(v)
	}
	return v
}
