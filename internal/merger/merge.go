package merger

// Merge объединяет две KeyMap. Результат начинается с ключей primary в их
// порядке; значения совпавших ключей из secondary прибавляются, остальные
// ключи secondary добавляются в конец в своём порядке. Входные KeyMap не меняются.
func Merge(primary, secondary *KeyMap) (*KeyMap, error) {
	result := primary.Clone()
	for _, e := range secondary.Entries() {
		if err := result.Add(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return result, nil
}
