// Package params кодирует нативные значения в параметры запроса и
// переписывает именованные плейсхолдеры (@name) в позиционные маркеры
// протокола (@p1, @p2, ...).
package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ruslano69/mssqlclient/pkg/sqlvalue"
)

// Parameter - одно связанное значение с именем протокольного маркера.
// Value уже приведено к виду, который принимает драйвер (sqlvalue.Encode).
type Parameter struct {
	Name  string
	Value any
}

// Params - способность типа развернуть себя в последовательность
// параметров. Порядок добавления = порядок объявления. Пользовательские
// типы реализуют интерфейс явно, без reflection.
type Params interface {
	AppendParams(out []Parameter) ([]Parameter, error)
}

// List - позиционные значения; получают имена p1..pN.
type List []any

// AppendParams реализует Params.
func (l List) AppendParams(out []Parameter) ([]Parameter, error) {
	for _, v := range l {
		enc, err := sqlvalue.Encode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Parameter{Name: fmt.Sprintf("p%d", len(out)+1), Value: enc})
	}
	return out, nil
}

// Args - удобный конструктор позиционного списка.
func Args(values ...any) List { return List(values) }

// Named - именованный набор значений для запросов с @name плейсхолдерами.
// Имена сравниваются без учета регистра.
type Named map[string]any

// AppendParams реализует Params. Порядок - отсортированные имена,
// чтобы результат был детерминированным.
func (n Named) AppendParams(out []Parameter) ([]Parameter, error) {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		enc, err := sqlvalue.Encode(n[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out = append(out, Parameter{Name: strings.ToLower(name), Value: enc})
	}
	return out, nil
}

// Collect разворачивает p в плоский список параметров.
func Collect(p Params) ([]Parameter, error) {
	if p == nil {
		return nil, nil
	}
	return p.AppendParams(nil)
}
