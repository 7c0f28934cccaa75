package hydrator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/hydra-warm/hydra-warm/internal/metadata"
)

const (
	generatedHeader = "Code generated by hydra-warm. DO NOT EDIT."
	helpersFile     = "hydrate_helpers.go"
)

// TypeName 返回类对应的 Go 类型名。
func TypeName(c *metadata.Class) string {
	return c.GoName()
}

// FileName 返回类对应的 hydrator 文件名，例如 OrderItem → order_item_hydrator.go。
func FileName(c *metadata.Class) string {
	return inflect.Underscore(c.Name) + "_hydrator.go"
}

func fieldName(f metadata.Field) string {
	return f.GoName()
}

// goType 返回字段在生成代码中的 Go 类型；每次调用生成新的 Code，避免共享 Statement。
func goType(t metadata.FieldType) jen.Code {
	switch t {
	case metadata.FieldTypeInt:
		return jen.Int64()
	case metadata.FieldTypeFloat:
		return jen.Float64()
	case metadata.FieldTypeBool:
		return jen.Bool()
	case metadata.FieldTypeTime:
		return jen.Qual("time", "Time")
	case metadata.FieldTypeHash:
		return jen.Map(jen.String()).Any()
	case metadata.FieldTypeCollection:
		return jen.Index().Any()
	default:
		return jen.String()
	}
}

func renderClass(pkg string, c *metadata.Class) ([]byte, error) {
	typeName := TypeName(c)

	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)

	f.Commentf("%s is the in-memory form of documents in the %s collection.", typeName, c.Collection)
	f.Type().Id(typeName).StructFunc(func(g *jen.Group) {
		for _, field := range c.Fields {
			typ := goType(field.Type)
			if field.Nullable {
				typ = jen.Op("*").Add(typ)
			}
			g.Id(fieldName(field)).Add(typ).Tag(map[string]string{"bson": field.PersistedKey()})
		}
	})

	f.Commentf("%sCollection is the collection %s documents are persisted in.", typeName, typeName)
	f.Const().Id(typeName + "Collection").Op("=").Lit(c.Collection)

	f.Commentf("Hydrate%s converts a persisted %s document into a %s.", typeName, c.Collection, typeName)
	f.Func().Id("Hydrate"+typeName).Params(
		jen.Id("doc").Map(jen.String()).Any(),
	).Params(jen.Op("*").Id(typeName), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("out").Op(":=").Op("&").Id(typeName).Values()
		for _, field := range c.Fields {
			g.Add(renderFieldAssign(c.Name, field))
		}
		g.Return(jen.Id("out"), jen.Nil())
	})

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}

// renderFieldAssign 生成：
//
//	if v, ok := doc["key"]; ok && v != nil {
//		x, ok := <convert>(v)
//		if !ok { return nil, fmt.Errorf(...) }
//		out.Field = x
//	}
func renderFieldAssign(className string, field metadata.Field) jen.Code {
	var convert jen.Code
	switch field.Type {
	case metadata.FieldTypeInt:
		convert = jen.Id("toInt64").Call(jen.Id("v"))
	case metadata.FieldTypeFloat:
		convert = jen.Id("toFloat64").Call(jen.Id("v"))
	default:
		convert = jen.Id("v").Assert(goType(field.Type))
	}

	target := jen.Id("x")
	if field.Nullable {
		target = jen.Op("&").Id("x")
	}

	msg := fmt.Sprintf("%s.%s: unexpected type %%T", className, field.Name)
	return jen.If(
		jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("doc").Index(jen.Lit(field.PersistedKey())),
		jen.Id("ok").Op("&&").Id("v").Op("!=").Nil(),
	).Block(
		jen.List(jen.Id("x"), jen.Id("ok")).Op(":=").Add(convert),
		jen.If(jen.Op("!").Id("ok")).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(msg), jen.Id("v"))),
		),
		jen.Id("out").Dot(fieldName(field)).Op("=").Add(target),
	)
}

func renderHelpers(pkg string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)

	f.Func().Id("toInt64").Params(jen.Id("v").Any()).Params(jen.Int64(), jen.Bool()).Block(
		jen.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).Block(
			jen.Case(jen.Int()).Block(jen.Return(jen.Int64().Call(jen.Id("n")), jen.True())),
			jen.Case(jen.Int32()).Block(jen.Return(jen.Int64().Call(jen.Id("n")), jen.True())),
			jen.Case(jen.Int64()).Block(jen.Return(jen.Id("n"), jen.True())),
			jen.Case(jen.Float64()).Block(
				jen.If(jen.Id("n").Op("==").Float64().Call(jen.Int64().Call(jen.Id("n")))).Block(
					jen.Return(jen.Int64().Call(jen.Id("n")), jen.True()),
				),
			),
		),
		jen.Return(jen.Lit(0), jen.False()),
	)

	f.Func().Id("toFloat64").Params(jen.Id("v").Any()).Params(jen.Float64(), jen.Bool()).Block(
		jen.Switch(jen.Id("n").Op(":=").Id("v").Assert(jen.Type())).Block(
			jen.Case(jen.Float64()).Block(jen.Return(jen.Id("n"), jen.True())),
			jen.Case(jen.Float32()).Block(jen.Return(jen.Float64().Call(jen.Id("n")), jen.True())),
			jen.Case(jen.Int()).Block(jen.Return(jen.Float64().Call(jen.Id("n")), jen.True())),
			jen.Case(jen.Int32()).Block(jen.Return(jen.Float64().Call(jen.Id("n")), jen.True())),
			jen.Case(jen.Int64()).Block(jen.Return(jen.Float64().Call(jen.Id("n")), jen.True())),
		),
		jen.Return(jen.Lit(0), jen.False()),
	)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render helpers: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizePackage 将配置里的包名收敛为合法的 Go 包标识符。
func sanitizePackage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultPackage
	}
	return b.String()
}
