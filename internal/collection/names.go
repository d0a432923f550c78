package collection

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// FormatName превращает человекочитаемый label в допустимое имя GraphQL:
// "blog posts" -> "BlogPosts", "3d models" -> "_3DModels"
func FormatName(label string) string {
	camel := strcase.ToCamel(strings.TrimSpace(label))

	var b strings.Builder
	for _, r := range camel {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}

	name := b.String()
	if name != "" && unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}

// IsName проверяет имя по правилу /^[_a-zA-Z][_a-zA-Z0-9]*$/
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
