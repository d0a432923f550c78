package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/MinSomai/payload/internal/collection"
)

// BuildWhereInputType синтезирует фильтр <Name>_where с типом операторов
// на каждое поле и рекурсивными AND/OR
func BuildWhereInputType(name string, fields []collection.Field, enums map[string]*graphql.Enum) (*graphql.InputObject, error) {
	operators := graphql.InputObjectConfigFieldMap{
		"id":        {Type: operatorType(name, "id", graphql.String, stringOperators)},
		"createdAt": {Type: operatorType(name, "createdAt", graphql.String, rangeOperators)},
		"updatedAt": {Type: operatorType(name, "updatedAt", graphql.String, rangeOperators)},
	}

	for _, f := range fields {
		if f.Hidden {
			continue
		}
		t, err := leafType(f, enums)
		if err != nil {
			return nil, fmt.Errorf("could not build where type for %s: %w", name, err)
		}
		operators[f.Name] = &graphql.InputObjectFieldConfig{
			Type: operatorType(name, f.Name, t, operatorsFor(f.Type)),
		}
	}

	var where *graphql.InputObject
	where = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name + "_where",
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			out := graphql.InputObjectConfigFieldMap{
				"AND": {Type: graphql.NewList(where)},
				"OR":  {Type: graphql.NewList(where)},
			}
			for k, v := range operators {
				out[k] = v
			}
			return out
		}),
	})
	return where, nil
}

type operatorSet int

const (
	stringOperators operatorSet = iota
	rangeOperators
	boolOperators
	enumOperators
)

func operatorsFor(t collection.FieldType) operatorSet {
	switch t {
	case collection.FieldNumber, collection.FieldDate:
		return rangeOperators
	case collection.FieldCheckbox:
		return boolOperators
	case collection.FieldSelect:
		return enumOperators
	}
	return stringOperators
}

func operatorType(name, field string, t graphql.Input, set operatorSet) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{
		"equals":     {Type: t},
		"not_equals": {Type: t},
		"exists":     {Type: graphql.Boolean},
	}

	switch set {
	case stringOperators:
		fields["like"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["contains"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
		fields["not_in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
	case rangeOperators:
		fields["greater_than"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["greater_than_equal"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["less_than"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["less_than_equal"] = &graphql.InputObjectFieldConfig{Type: t}
		fields["in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
		fields["not_in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
	case enumOperators:
		fields["in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
		fields["not_in"] = &graphql.InputObjectFieldConfig{Type: graphql.NewList(t)}
	}

	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name + "_" + field + "_operator",
		Fields: fields,
	})
}
