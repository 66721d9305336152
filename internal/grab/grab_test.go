package grab

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov82/csv-tools/internal/config"
	"github.com/ryabkov82/csv-tools/internal/table"
)

func primaryTable() *table.Table {
	return &table.Table{
		Header: []string{"id", "name"},
		Rows:   [][]string{{"1", "a"}, {"2", "b"}},
	}
}

func secondaryTable() *table.Table {
	return &table.Table{
		Header: []string{"label", "id", "price"},
		Rows:   [][]string{{"x", "9", "10"}, {"y", "02", "20"}},
	}
}

func TestApply(t *testing.T) {
	primary := primaryTable()
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 1, ColumnsToCopy: []int{2}}

	out, match, err := Apply(primary, secondaryTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, 1, match)
	assert.Equal(t, []string{"id", "name", "price"}, out.Header)
	assert.Equal(t, [][]string{{"1", "a", "10"}, {"2", "b", "20"}}, out.Rows)

	// входная таблица не меняется
	assert.Equal(t, primaryTable(), primary)
}

func TestApplyStopsAtFirstMatch(t *testing.T) {
	secondary := &table.Table{
		Header: []string{"id", "price"},
		Rows:   [][]string{{"1", "10"}, {"2", "20"}},
	}
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 0, ColumnsToCopy: []int{1}}

	out, match, err := Apply(primaryTable(), secondary, spec)
	require.NoError(t, err)
	assert.Equal(t, 0, match)
	assert.Equal(t, []string{"id", "name", "price"}, out.Header)
	assert.Equal(t, [][]string{{"1", "a", "10"}, {"2", "b", "20"}}, out.Rows)
}

func TestApplyNoMatch(t *testing.T) {
	spec := &Spec{PrimaryKeyColumnIndex: 1, SecondaryKeyColumnIndex: 1, ColumnsToCopy: []int{2}}

	out, match, err := Apply(primaryTable(), secondaryTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, -1, match)
	assert.Equal(t, primaryTable().Header, out.Header)
	assert.Equal(t, primaryTable().Rows, out.Rows)
}

func TestApplyPairwiseOnly(t *testing.T) {
	// ключ "2" есть в обеих таблицах, но в разных строках
	secondary := &table.Table{
		Header: []string{"id", "price"},
		Rows:   [][]string{{"2", "20"}, {"3", "30"}},
	}
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 0, ColumnsToCopy: []int{1}}

	_, match, err := Apply(primaryTable(), secondary, spec)
	require.NoError(t, err)
	assert.Equal(t, -1, match)
}

func TestApplyReplacesColumnWithSameName(t *testing.T) {
	secondary := &table.Table{
		Header: []string{"id", "name"},
		Rows:   [][]string{{"1", "A"}, {"2", "B"}},
	}
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 0, ColumnsToCopy: []int{1}}

	out, _, err := Apply(primaryTable(), secondary, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, out.Header)
	assert.Equal(t, [][]string{{"1", "A"}, {"2", "B"}}, out.Rows)
}

func TestApplyShorterSecondary(t *testing.T) {
	primary := &table.Table{
		Header: []string{"id"},
		Rows:   [][]string{{"1"}, {"2"}, {"3"}},
	}
	secondary := &table.Table{
		Header: []string{"id", "price"},
		Rows:   [][]string{{"1", "10"}},
	}
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 0, ColumnsToCopy: []int{1}}

	out, match, err := Apply(primary, secondary, spec)
	require.NoError(t, err)
	assert.Equal(t, 0, match)
	assert.Equal(t, [][]string{{"1", "10"}, {"2", ""}, {"3", ""}}, out.Rows)
}

func TestApplyRangeError(t *testing.T) {
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 1, ColumnsToCopy: []int{3}}

	_, _, err := Apply(primaryTable(), secondaryTable(), spec)
	var rErr *ConfigurationRangeError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, 3, rErr.Index)
	assert.Equal(t, 3, rErr.Columns)
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGrabFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.GrabConfig{
		PrimaryPath:   writeCSV(t, dir, "p.csv", "id,name\n1,a\n2,b\n"),
		SecondaryPath: writeCSV(t, dir, "s.csv", "label,id,price\nx,9,10\ny,2,20\n"),
		OutputPath:    filepath.Join(dir, "out.csv"),
		Spec:          `{"primaryKeyColumnIndex":0,"secondaryKeyColumnIndex":1,"columnsToCopy":[2]}`,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	res, err := GrabFiles(cfg, log)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 2, res.MatchRow)
	assert.Equal(t, int64(2), res.RowCount)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "id,name,price\n1,a,10\n2,b,20\n", string(data))
}

func TestGrabFilesShapeErrorBeforeReading(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.GrabConfig{
		PrimaryPath:   filepath.Join(dir, "missing.csv"),
		SecondaryPath: filepath.Join(dir, "missing.csv"),
		OutputPath:    filepath.Join(dir, "out.csv"),
		Spec:          `{"primaryKeyPos": 0, "secondaryKeyPos": 1, "grabPos": [2]}`,
	}

	_, err := GrabFiles(cfg, nil)
	var sErr *ConfigurationShapeError
	require.True(t, errors.As(err, &sErr))
}

func TestGrabFilesRangeErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.GrabConfig{
		PrimaryPath:   writeCSV(t, dir, "p.csv", "id,name\n1,a\n"),
		SecondaryPath: writeCSV(t, dir, "s.csv", "id,price\n1,10\n"),
		OutputPath:    filepath.Join(dir, "out.csv"),
		Spec:          `{"primaryKeyColumnIndex":0,"secondaryKeyColumnIndex":0,"columnsToCopy":[5]}`,
	}

	_, err := GrabFiles(cfg, nil)
	var rErr *ConfigurationRangeError
	require.True(t, errors.As(err, &rErr))

	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestApplyLongerSecondary(t *testing.T) {
	primary := &table.Table{
		Header: []string{"id"},
		Rows:   [][]string{{"1"}},
	}
	secondary := &table.Table{
		Header: []string{"id", "price"},
		Rows:   [][]string{{"1", "10"}, {"2", "20"}, {"3", "30"}},
	}
	spec := &Spec{PrimaryKeyColumnIndex: 0, SecondaryKeyColumnIndex: 0, ColumnsToCopy: []int{1}}

	out, match, err := Apply(primary, secondary, spec)
	require.NoError(t, err)
	assert.Equal(t, 0, match)
	assert.Equal(t, [][]string{{"1", "10"}}, out.Rows)
}
