package table

import (
	"strconv"
	"strings"
)

// Canonical приводит ячейку к строковой форме, по которой сравниваются ключи.
// Целые числа записываются без ведущих нулей и пробелов ("01" и "1" совпадают),
// остальные значения остаются как есть ("1.0" и "1" различаются).
func Canonical(cell string) string {
	if n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return cell
}
