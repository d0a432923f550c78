package schema

import "github.com/graphql-go/graphql"

// BuildPaginatedListType оборачивает тип в страницу с метаданными пагинации
func BuildPaginatedListType(name string, item graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"docs":          &graphql.Field{Type: graphql.NewList(item)},
			"totalDocs":     &graphql.Field{Type: graphql.Int},
			"limit":         &graphql.Field{Type: graphql.Int},
			"totalPages":    &graphql.Field{Type: graphql.Int},
			"page":          &graphql.Field{Type: graphql.Int},
			"pagingCounter": &graphql.Field{Type: graphql.Int},
			"hasPrevPage":   &graphql.Field{Type: graphql.Boolean},
			"hasNextPage":   &graphql.Field{Type: graphql.Boolean},
			"prevPage":      &graphql.Field{Type: graphql.Int},
			"nextPage":      &graphql.Field{Type: graphql.Int},
		},
	})
}
