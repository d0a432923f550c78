package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/MinSomai/payload/internal/collection"
)

// CollectionTypes типы коллекции, создаются один раз и переиспользуются
type CollectionTypes struct {
	Object        *graphql.Object
	Where         *graphql.InputObject
	MutationInput *graphql.InputObject
	Paginated     *graphql.Object
	Me            *graphql.Object
	enums         map[string]*graphql.Enum
}

// leaf скаляр или enum, годится и для ввода, и для вывода
type leaf interface {
	graphql.Input
	graphql.Output
}

// Types возвращает типы коллекции из кэша или синтезирует их
func (b *Builder) Types(c *collection.Collection) (*CollectionTypes, error) {
	if t, ok := b.types[c.Slug]; ok {
		return t, nil
	}

	names := c.Names()
	enums, err := BuildEnums(names.Singular, c.Fields)
	if err != nil {
		return nil, err
	}

	t := &CollectionTypes{enums: enums}

	t.Object, err = BuildObjectType(names.Singular, c.Fields, enums, documentFields())
	if err != nil {
		return nil, err
	}
	t.Where, err = BuildWhereInputType(names.Singular, c.Fields, enums)
	if err != nil {
		return nil, err
	}
	t.MutationInput, err = BuildMutationInputType(names.Singular, c.Fields, enums)
	if err != nil {
		return nil, err
	}
	t.Paginated = BuildPaginatedListType(names.Plural, t.Object)

	if c.IsAuth() {
		// порядок полей (username первым) хранится только в JWTFields,
		// graphql-go отдает поля объекта отсортированными по имени
		t.Me, err = BuildObjectType("Me", c.JWTFields(), enums, nil)
		if err != nil {
			return nil, err
		}
	}

	b.types[c.Slug] = t
	return t, nil
}

// служебные поля каждого документа
func documentFields() graphql.Fields {
	return graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	}
}

// BuildEnums создает enum типы для select полей: <Name>_<field>
func BuildEnums(name string, fields []collection.Field) (map[string]*graphql.Enum, error) {
	enums := make(map[string]*graphql.Enum)
	for _, f := range fields {
		if f.Type != collection.FieldSelect {
			continue
		}
		if len(f.Options) == 0 {
			return nil, fmt.Errorf("select field %q of %s has no options", f.Name, name)
		}

		values := graphql.EnumValueConfigMap{}
		for _, opt := range f.Options {
			values[opt] = &graphql.EnumValueConfig{Value: opt}
		}
		enums[f.Name] = graphql.NewEnum(graphql.EnumConfig{
			Name:   name + "_" + f.Name,
			Values: values,
		})
	}
	return enums, nil
}

func leafType(f collection.Field, enums map[string]*graphql.Enum) (leaf, error) {
	switch f.Type {
	case collection.FieldText, collection.FieldEmail, collection.FieldTextarea, collection.FieldCode, collection.FieldDate:
		return graphql.String, nil
	case collection.FieldNumber:
		return graphql.Float, nil
	case collection.FieldCheckbox:
		return graphql.Boolean, nil
	case collection.FieldSelect:
		if e, ok := enums[f.Name]; ok {
			return e, nil
		}
		return nil, fmt.Errorf("no enum built for select field %q", f.Name)
	}
	return nil, fmt.Errorf("%w %q on field %q", collection.ErrUnknownFieldType, f.Type, f.Name)
}

// BuildObjectType синтезирует выходной тип. Обязательные поля non-null,
// скрытые поля не попадают в тип.
func BuildObjectType(name string, fields []collection.Field, enums map[string]*graphql.Enum, base graphql.Fields) (*graphql.Object, error) {
	out := graphql.Fields{}
	for k, v := range base {
		out[k] = v
	}

	for _, f := range fields {
		if f.Hidden {
			continue
		}
		t, err := leafType(f, enums)
		if err != nil {
			return nil, fmt.Errorf("could not build type %s: %w", name, err)
		}

		var typ graphql.Output = t
		if f.Required {
			typ = graphql.NewNonNull(t)
		}
		out[f.Name] = &graphql.Field{Type: typ}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: out,
	}), nil
}

// BuildMutationInputType все поля nullable, чтобы update мог быть частичным
func BuildMutationInputType(name string, fields []collection.Field, enums map[string]*graphql.Enum) (*graphql.InputObject, error) {
	out := graphql.InputObjectConfigFieldMap{}
	for _, f := range fields {
		t, err := leafType(f, enums)
		if err != nil {
			return nil, fmt.Errorf("could not build input type for %s: %w", name, err)
		}
		out[f.Name] = &graphql.InputObjectFieldConfig{Type: t}
	}

	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "mutation" + name,
		Fields: out,
	}), nil
}
