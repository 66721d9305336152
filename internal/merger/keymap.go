package merger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ryabkov82/csv-tools/internal/table"
)

// KeySeparator соединяет части составного ключа при выводе.
const KeySeparator = ", "

// ErrNoValueColumn — в таблице нет ни одной колонки, значит нет и колонки значений.
var ErrNoValueColumn = errors.New("в таблице нет колонки значений")

// CompositeKey — все колонки строки, кроме последней, в канонической форме.
// Ключи сравниваются по частям, поэтому запятая внутри значения
// не смешивает границы частей.
type CompositeKey struct {
	parts []string
}

func NewCompositeKey(parts ...string) CompositeKey {
	return CompositeKey{parts: append([]string(nil), parts...)}
}

// Parts возвращает копию частей ключа.
func (k CompositeKey) Parts() []string {
	return append([]string(nil), k.parts...)
}

func (k CompositeKey) String() string {
	return strings.Join(k.parts, KeySeparator)
}

// id — однозначная кодировка ключа для индекса: длина каждой части перед ней.
func (k CompositeKey) id() string {
	var b strings.Builder
	for _, p := range k.parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// DuplicatePolicy определяет, что делать с ключом, повторяющимся внутри одной таблицы.
type DuplicatePolicy int

const (
	// LastWriteWins — более позднее значение заменяет раннее,
	// позиция ключа остаётся на месте первого появления.
	LastWriteWins DuplicatePolicy = iota
	// Sum — значения повторяющегося ключа складываются.
	Sum
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastWriteWins:
		return "last-write-wins"
	case Sum:
		return "sum"
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// ValueParseError — значение в последней колонке не является целым числом.
type ValueParseError struct {
	Path   string
	Row    int // номер строки данных, с 1
	Column string
	Value  string
	Err    error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("%s: строка %d, колонка %q: значение %q не является целым числом",
		e.Path, e.Row, e.Column, e.Value)
}

func (e *ValueParseError) Unwrap() error { return e.Err }

// SumOverflowError — сумма значений не помещается в int64.
type SumOverflowError struct {
	Key  CompositeKey
	A, B int64
}

func (e *SumOverflowError) Error() string {
	return fmt.Sprintf("переполнение при сложении %d и %d для ключа %q", e.A, e.B, e.Key.String())
}

// Duplicate описывает ключ, повторно встретившийся в одной таблице.
type Duplicate struct {
	Key      CompositeKey
	Row      int
	Previous int64
	Value    int64
}

type Entry struct {
	Key   CompositeKey
	Value int64
}

// KeyMap — отображение ключ -> значение с сохранением порядка вставки.
type KeyMap struct {
	keys   []CompositeKey
	values []int64
	index  map[string]int

	// Duplicates — повторы ключей, встреченные при построении.
	Duplicates []Duplicate
}

func NewKeyMap() *KeyMap {
	return &KeyMap{index: make(map[string]int)}
}

func (m *KeyMap) Len() int {
	return len(m.keys)
}

func (m *KeyMap) Get(k CompositeKey) (int64, bool) {
	i, ok := m.index[k.id()]
	if !ok {
		return 0, false
	}
	return m.values[i], true
}

// Set заменяет значение существующего ключа или добавляет ключ в конец.
// Возвращает предыдущее значение и признак того, что ключ уже был.
func (m *KeyMap) Set(k CompositeKey, v int64) (int64, bool) {
	id := k.id()
	if i, ok := m.index[id]; ok {
		prev := m.values[i]
		m.values[i] = v
		return prev, true
	}
	m.index[id] = len(m.keys)
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)
	return 0, false
}

// Add прибавляет v к значению существующего ключа или добавляет ключ в конец.
func (m *KeyMap) Add(k CompositeKey, v int64) error {
	id := k.id()
	i, ok := m.index[id]
	if !ok {
		m.Set(k, v)
		return nil
	}
	sum, err := add(k, m.values[i], v)
	if err != nil {
		return err
	}
	m.values[i] = sum
	return nil
}

// Entries возвращает пары в порядке вставки.
func (m *KeyMap) Entries() []Entry {
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.values[i]}
	}
	return out
}

func (m *KeyMap) Clone() *KeyMap {
	c := &KeyMap{
		keys:   append([]CompositeKey(nil), m.keys...),
		values: append([]int64(nil), m.values...),
		index:  make(map[string]int, len(m.index)),
	}
	for id, i := range m.index {
		c.index[id] = i
	}
	return c
}

func add(k CompositeKey, a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, &SumOverflowError{Key: k, A: a, B: b}
	}
	return a + b, nil
}

// BuildKeyMap строит KeyMap по строкам таблицы в их исходном порядке.
func BuildKeyMap(t *table.Table, policy DuplicatePolicy) (*KeyMap, error) {
	if t.Width() == 0 {
		return nil, ErrNoValueColumn
	}
	last := t.Width() - 1
	m := NewKeyMap()

	for r, row := range t.Rows {
		parts := make([]string, last)
		for j := 0; j < last; j++ {
			parts[j] = table.Canonical(row[j])
		}
		key := CompositeKey{parts: parts}

		raw := row[last]
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &ValueParseError{Path: t.Path, Row: r + 1, Column: t.Header[last], Value: raw, Err: err}
		}

		prev, seen := m.Get(key)
		if seen {
			m.Duplicates = append(m.Duplicates, Duplicate{Key: key, Row: r + 1, Previous: prev, Value: v})
		}

		switch policy {
		case Sum:
			if err := m.Add(key, v); err != nil {
				return nil, err
			}
		default:
			m.Set(key, v)
		}
	}
	return m, nil
}
