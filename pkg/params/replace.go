package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ruslano69/mssqlclient/pkg/sqlvalue"
)

// ParameterMismatchError - несоответствие между плейсхолдерами в тексте
// запроса и переданными значениями: Missing - плейсхолдеры без значения,
// Extra - значения без плейсхолдера.
type ParameterMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *ParameterMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("no value bound for placeholder(s) @%s",
			strings.Join(e.Missing, ", @")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("value(s) %s have no matching placeholder",
			strings.Join(e.Extra, ", ")))
	}
	return "params: " + strings.Join(parts, "; ")
}

// placeholder - одно вхождение @name в тексте запроса.
type placeholder struct {
	name  string // в нижнем регистре
	start int    // позиция '@'
	end   int    // позиция за последним символом имени
}

// ReplaceParams переписывает каждый @name из names в @pN, где N - позиция
// имени в names (с единицы). Строковые литералы, квотированные
// идентификаторы, комментарии и системные @@переменные не трогаются.
// Плейсхолдер без имени в names или имя без плейсхолдера - ошибка
// ParameterMismatchError.
func ReplaceParams(sql string, names ...string) (string, error) {
	tokens := scanPlaceholders(sql)

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[strings.ToLower(name)] = i + 1
	}

	seen := make(map[string]bool, len(tokens))
	var missing []string
	for _, tok := range tokens {
		if seen[tok.name] {
			continue
		}
		seen[tok.name] = true
		if _, ok := index[tok.name]; !ok {
			missing = append(missing, tok.name)
		}
	}

	var extra []string
	for _, name := range names {
		if !seen[strings.ToLower(name)] {
			extra = append(extra, name)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		return "", &ParameterMismatchError{Missing: missing, Extra: extra}
	}

	var b strings.Builder
	b.Grow(len(sql))
	last := 0
	for _, tok := range tokens {
		b.WriteString(sql[last:tok.start])
		fmt.Fprintf(&b, "@p%d", index[tok.name])
		last = tok.end
	}
	b.WriteString(sql[last:])

	return b.String(), nil
}

// BindNamed переписывает запрос с именованными плейсхолдерами и собирает
// список параметров в порядке первого вхождения плейсхолдера в тексте.
func BindNamed(sql string, values Named) (string, []Parameter, error) {
	lowered := make(map[string]any, len(values))
	for name, v := range values {
		lowered[strings.ToLower(name)] = v
	}

	tokens := scanPlaceholders(sql)

	// Назначаем номера в порядке первого вхождения.
	order := make([]string, 0, len(lowered))
	index := make(map[string]int, len(lowered))
	var missing []string
	for _, tok := range tokens {
		if _, ok := index[tok.name]; ok {
			continue
		}
		if _, ok := lowered[tok.name]; !ok {
			missing = append(missing, tok.name)
			continue
		}
		index[tok.name] = len(order) + 1
		order = append(order, tok.name)
	}

	var extra []string
	for name := range lowered {
		if _, ok := index[name]; !ok {
			extra = append(extra, name)
		}
	}

	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return "", nil, &ParameterMismatchError{Missing: missing, Extra: extra}
	}

	var b strings.Builder
	b.Grow(len(sql))
	last := 0
	for _, tok := range tokens {
		b.WriteString(sql[last:tok.start])
		fmt.Fprintf(&b, "@p%d", index[tok.name])
		last = tok.end
	}
	b.WriteString(sql[last:])

	out := make([]Parameter, len(order))
	for i, name := range order {
		enc, err := sqlvalue.Encode(lowered[name])
		if err != nil {
			return "", nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[i] = Parameter{Name: fmt.Sprintf("p%d", i+1), Value: enc}
	}

	return b.String(), out, nil
}

// scanPlaceholders находит все @name вне литералов и комментариев.
func scanPlaceholders(sql string) []placeholder {
	var out []placeholder

	i := 0
	for i < len(sql) {
		c := sql[i]
		switch {
		case c == '\'':
			i = skipQuoted(sql, i+1, '\'')
		case c == '"':
			i = skipQuoted(sql, i+1, '"')
		case c == '[':
			i = skipBracketed(sql, i+1)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			i = skipLine(sql, i+2)
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			i = skipBlock(sql, i+2)
		case c == '@':
			if i+1 < len(sql) && sql[i+1] == '@' {
				// системная переменная @@rowcount и т.п.
				i += 2
				for i < len(sql) && isIdentChar(sql[i]) {
					i++
				}
				continue
			}
			start := i
			i++
			nameStart := i
			for i < len(sql) && isIdentChar(sql[i]) {
				i++
			}
			if i > nameStart {
				out = append(out, placeholder{
					name:  strings.ToLower(sql[nameStart:i]),
					start: start,
					end:   i,
				})
			}
		default:
			i++
		}
	}

	return out
}

// skipQuoted пропускает литерал до закрывающей кавычки; удвоенная
// кавычка - экранирование.
func skipQuoted(sql string, i int, quote byte) int {
	for i < len(sql) {
		if sql[i] == quote {
			if i+1 < len(sql) && sql[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func skipBracketed(sql string, i int) int {
	for i < len(sql) && sql[i] != ']' {
		i++
	}
	if i < len(sql) {
		i++
	}
	return i
}

func skipLine(sql string, i int) int {
	for i < len(sql) && sql[i] != '\n' {
		i++
	}
	return i
}

func skipBlock(sql string, i int) int {
	for i+1 < len(sql) {
		if sql[i] == '*' && sql[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(sql)
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
