package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

var ErrUnknownOperator = errors.New("unknown where operator")

// Paginated страница результатов в формате paginated-list типа
type Paginated struct {
	Docs          []map[string]interface{} `json:"docs"`
	TotalDocs     int                      `json:"totalDocs"`
	Limit         int                      `json:"limit"`
	TotalPages    int                      `json:"totalPages"`
	Page          int                      `json:"page"`
	PagingCounter int                      `json:"pagingCounter"`
	HasPrevPage   bool                     `json:"hasPrevPage"`
	HasNextPage   bool                     `json:"hasNextPage"`
	PrevPage      *int                     `json:"prevPage"`
	NextPage      *int                     `json:"nextPage"`
}

// Filter отбирает документы, подходящие под where
func Filter(docs []map[string]interface{}, where map[string]interface{}) ([]map[string]interface{}, error) {
	if len(where) == 0 {
		return docs, nil
	}

	out := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		ok, err := Match(doc, where)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Match проверяет документ на соответствие where.
// Условия на верхнем уровне объединяются через AND.
func Match(doc, where map[string]interface{}) (bool, error) {
	for key, cond := range where {
		var (
			ok  bool
			err error
		)

		switch key {
		case "AND":
			ok, err = matchAll(doc, cond, true)
		case "OR":
			ok, err = matchAll(doc, cond, false)
		default:
			ops, isMap := cond.(map[string]interface{})
			if !isMap {
				// краткая форма {field: value}
				ok = equal(doc[key], cond)
				break
			}
			ok, err = matchField(doc, key, ops)
		}

		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchAll(doc map[string]interface{}, cond interface{}, all bool) (bool, error) {
	list, ok := cond.([]interface{})
	if !ok {
		if m, isMap := cond.(map[string]interface{}); isMap {
			list = []interface{}{m}
		}
	}
	if len(list) == 0 {
		return true, nil
	}

	for _, item := range list {
		sub, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		matched, err := Match(doc, sub)
		if err != nil {
			return false, err
		}
		if all && !matched {
			return false, nil
		}
		if !all && matched {
			return true, nil
		}
	}
	return all, nil
}

func matchField(doc map[string]interface{}, field string, ops map[string]interface{}) (bool, error) {
	value, present := doc[field]
	if present && value == nil {
		present = false
	}

	for op, arg := range ops {
		var ok bool
		switch op {
		case "equals":
			ok = equal(value, arg)
		case "not_equals":
			ok = !equal(value, arg)
		case "in":
			ok = in(value, arg)
		case "not_in":
			ok = !in(value, arg)
		case "exists":
			want, _ := arg.(bool)
			ok = present == want
		case "like":
			ok = present && like(value, arg)
		case "contains":
			ok = present && strings.Contains(fmt.Sprint(value), fmt.Sprint(arg))
		case "greater_than":
			ok = compareOp(value, arg, func(c int) bool { return c > 0 })
		case "greater_than_equal":
			ok = compareOp(value, arg, func(c int) bool { return c >= 0 })
		case "less_than":
			ok = compareOp(value, arg, func(c int) bool { return c < 0 })
		case "less_than_equal":
			ok = compareOp(value, arg, func(c int) bool { return c <= 0 })
		default:
			return false, fmt.Errorf("%w %q on field %q", ErrUnknownOperator, op, field)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	a, b = normalizeTime(a), normalizeTime(b)
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func in(value, arg interface{}) bool {
	list, ok := arg.([]interface{})
	if !ok {
		return equal(value, arg)
	}
	for _, item := range list {
		if equal(value, item) {
			return true
		}
	}
	return false
}

// like - регистронезависимый поиск всех слов аргумента
func like(value, arg interface{}) bool {
	haystack := strings.ToLower(fmt.Sprint(value))
	for _, word := range strings.Fields(strings.ToLower(fmt.Sprint(arg))) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}

func compareOp(a, b interface{}, pred func(int) bool) bool {
	if a == nil || b == nil {
		return false
	}
	c, ok := compare(a, b)
	return ok && pred(c)
}

// compare сравнивает числа, даты и строки. ok=false если значения несравнимы.
func compare(a, b interface{}) (int, bool) {
	a, b = normalizeTime(a), normalizeTime(b)
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339, sb); err == nil {
			return ta.Compare(tb), true
		}
	}
	return strings.Compare(sa, sb), true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Sort сортирует документы по полю; "-field" означает убывание.
// Пустое значение сортирует по createdAt по убыванию.
func Sort(docs []map[string]interface{}, spec string) {
	if spec == "" {
		spec = "-createdAt"
	}
	desc := strings.HasPrefix(spec, "-")
	field := strings.TrimPrefix(spec, "-")

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i][field], docs[j][field]
		// документы без значения всегда в конце
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		c, ok := compare(a, b)
		if !ok {
			return false
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func normalizeTime(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// Paginate вырезает страницу. page и limit <= 0 заменяются значениями по умолчанию.
func Paginate(docs []map[string]interface{}, page, limit int) *Paginated {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	total := len(docs)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	p := &Paginated{
		Docs:          docs[start:end],
		TotalDocs:     total,
		Limit:         limit,
		TotalPages:    totalPages,
		Page:          page,
		PagingCounter: start + 1,
		HasPrevPage:   page > 1,
		HasNextPage:   page < totalPages,
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
