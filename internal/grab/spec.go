package grab

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	fieldPrimaryKey   = "primaryKeyColumnIndex"
	fieldSecondaryKey = "secondaryKeyColumnIndex"
	fieldColumns      = "columnsToCopy"
)

// Spec задаёт, по каким колонкам сравнивать таблицы и какие колонки
// второй таблицы копировать в первую.
type Spec struct {
	PrimaryKeyColumnIndex   int   `json:"primaryKeyColumnIndex"`
	SecondaryKeyColumnIndex int   `json:"secondaryKeyColumnIndex"`
	ColumnsToCopy           []int `json:"columnsToCopy"`
}

// ConfigurationShapeError — конфигурация не является объектом нужного вида:
// лишние или отсутствующие поля, значения не того типа.
type ConfigurationShapeError struct {
	Field  string
	Reason string
}

func (e *ConfigurationShapeError) Error() string {
	if e.Field == "" {
		return "неверная конфигурация: " + e.Reason
	}
	return fmt.Sprintf("неверная конфигурация: поле %s: %s", e.Field, e.Reason)
}

// ConfigurationRangeError — индекс колонки выходит за пределы таблицы.
type ConfigurationRangeError struct {
	Field   string
	Index   int
	Columns int
}

func (e *ConfigurationRangeError) Error() string {
	return fmt.Sprintf("индекс %s=%d вне диапазона [0, %d]", e.Field, e.Index, e.Columns-1)
}

// ParseSpec разбирает JSON-конфигурацию. Принимается только объект ровно
// с тремя полями; индексы — целые числа, columnsToCopy — массив без повторов.
func ParseSpec(raw string) (*Spec, error) {
	if !gjson.Valid(raw) {
		return nil, &ConfigurationShapeError{Reason: "некорректный JSON"}
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, &ConfigurationShapeError{Reason: "ожидался JSON-объект"}
	}

	seen := make(map[string]bool)
	var shapeErr error
	doc.ForEach(func(key, _ gjson.Result) bool {
		name := key.String()
		switch {
		case name != fieldPrimaryKey && name != fieldSecondaryKey && name != fieldColumns:
			shapeErr = &ConfigurationShapeError{Field: name, Reason: "неизвестное поле"}
		case seen[name]:
			shapeErr = &ConfigurationShapeError{Field: name, Reason: "поле указано дважды"}
		}
		seen[name] = true
		return shapeErr == nil
	})
	if shapeErr != nil {
		return nil, shapeErr
	}

	spec := &Spec{}
	var err error
	if spec.PrimaryKeyColumnIndex, err = intField(doc, fieldPrimaryKey); err != nil {
		return nil, err
	}
	if spec.SecondaryKeyColumnIndex, err = intField(doc, fieldSecondaryKey); err != nil {
		return nil, err
	}

	cols := doc.Get(fieldColumns)
	if !cols.Exists() {
		return nil, &ConfigurationShapeError{Field: fieldColumns, Reason: "поле отсутствует"}
	}
	if !cols.IsArray() {
		return nil, &ConfigurationShapeError{Field: fieldColumns, Reason: "ожидался массив индексов"}
	}
	used := make(map[int]bool)
	spec.ColumnsToCopy = []int{}
	for _, item := range cols.Array() {
		idx, err := toInt(fieldColumns, item)
		if err != nil {
			return nil, err
		}
		if used[idx] {
			return nil, &ConfigurationShapeError{Field: fieldColumns, Reason: fmt.Sprintf("индекс %d указан дважды", idx)}
		}
		used[idx] = true
		spec.ColumnsToCopy = append(spec.ColumnsToCopy, idx)
	}
	return spec, nil
}

func intField(doc gjson.Result, field string) (int, error) {
	r := doc.Get(field)
	if !r.Exists() {
		return 0, &ConfigurationShapeError{Field: field, Reason: "поле отсутствует"}
	}
	return toInt(field, r)
}

func toInt(field string, r gjson.Result) (int, error) {
	if r.Type != gjson.Number {
		return 0, &ConfigurationShapeError{Field: field, Reason: fmt.Sprintf("ожидалось целое число, получено %s", r.Raw)}
	}
	n, err := strconv.Atoi(r.Raw)
	if err != nil {
		return 0, &ConfigurationShapeError{Field: field, Reason: fmt.Sprintf("ожидалось целое число, получено %s", r.Raw)}
	}
	return n, nil
}

// Validate проверяет, что все индексы лежат в [0, columnCount-1] своей таблицы.
func (s *Spec) Validate(primaryColumns, secondaryColumns int) error {
	if !inRange(s.PrimaryKeyColumnIndex, primaryColumns) {
		return &ConfigurationRangeError{Field: fieldPrimaryKey, Index: s.PrimaryKeyColumnIndex, Columns: primaryColumns}
	}
	if !inRange(s.SecondaryKeyColumnIndex, secondaryColumns) {
		return &ConfigurationRangeError{Field: fieldSecondaryKey, Index: s.SecondaryKeyColumnIndex, Columns: secondaryColumns}
	}
	for _, c := range s.ColumnsToCopy {
		if !inRange(c, secondaryColumns) {
			return &ConfigurationRangeError{Field: fieldColumns, Index: c, Columns: secondaryColumns}
		}
	}
	return nil
}

func inRange(idx, columns int) bool {
	return idx >= 0 && idx < columns
}
