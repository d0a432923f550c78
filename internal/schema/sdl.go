package schema

import (
	"bytes"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// PrintSDL печатает исполняемую схему в SDL
func PrintSDL(s graphql.Schema) string {
	doc := &ast.Schema{Types: map[string]*ast.Definition{}}

	for name, t := range s.TypeMap() {
		if strings.HasPrefix(name, "__") || builtinScalars[name] {
			continue
		}
		if def := definition(t); def != nil {
			doc.Types[name] = def
		}
	}
	if q := s.QueryType(); q != nil {
		doc.Query = doc.Types[q.Name()]
	}
	if m := s.MutationType(); m != nil {
		doc.Mutation = doc.Types[m.Name()]
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchema(doc)
	return buf.String()
}

func definition(t graphql.Type) *ast.Definition {
	switch t := t.(type) {
	case *graphql.Object:
		def := &ast.Definition{Kind: ast.Object, Name: t.Name(), Description: t.Description()}
		fields := t.Fields()
		for _, name := range sortedKeys(fields) {
			fd := fields[name]
			field := &ast.FieldDefinition{Name: name, Type: typeRef(fd.Type), Description: fd.Description}
			args := append([]*graphql.Argument(nil), fd.Args...)
			sort.Slice(args, func(i, j int) bool { return args[i].Name() < args[j].Name() })
			for _, arg := range args {
				field.Arguments = append(field.Arguments, &ast.ArgumentDefinition{Name: arg.Name(), Type: typeRef(arg.Type)})
			}
			def.Fields = append(def.Fields, field)
		}
		return def

	case *graphql.InputObject:
		def := &ast.Definition{Kind: ast.InputObject, Name: t.Name(), Description: t.Description()}
		fields := t.Fields()
		for _, name := range sortedKeys(fields) {
			def.Fields = append(def.Fields, &ast.FieldDefinition{Name: name, Type: typeRef(fields[name].Type)})
		}
		return def

	case *graphql.Enum:
		def := &ast.Definition{Kind: ast.Enum, Name: t.Name(), Description: t.Description()}
		values := t.Values()
		names := make([]string, 0, len(values))
		for _, v := range values {
			names = append(names, v.Name)
		}
		sort.Strings(names)
		for _, name := range names {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: name})
		}
		return def

	case *graphql.Scalar:
		return &ast.Definition{Kind: ast.Scalar, Name: t.Name(), Description: t.Description()}
	}
	return nil
}

func typeRef(t graphql.Type) *ast.Type {
	switch t := t.(type) {
	case *graphql.NonNull:
		inner := typeRef(t.OfType)
		inner.NonNull = true
		return inner
	case *graphql.List:
		return &ast.Type{Elem: typeRef(t.OfType)}
	}
	return &ast.Type{NamedType: t.Name()}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
