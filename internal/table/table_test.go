package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.csv", "x,y,z\na,a,1\n\nb,b,2\r\n")

	tbl, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Path)
	assert.Equal(t, []string{"x", "y", "z"}, tbl.Header)
	assert.Equal(t, [][]string{{"a", "a", "1"}, {"b", "b", "2"}}, tbl.Rows)
}

func TestReadTextKeepsCommasUnquoted(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.csv", "x,y\n\"a,b\"\n")

	tbl, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{`"a`, `b"`}}, tbl.Rows)
}

func TestReadTextHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.csv", "\n\nx,y,z\n")

	tbl, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("row width", func(t *testing.T) {
		_, err := Read(writeFile(t, dir, "w.csv", "x,y\na,1\nb\n"))
		var wErr *RowWidthError
		require.True(t, errors.As(err, &wErr))
		assert.Equal(t, 3, wErr.Line)
		assert.Equal(t, 1, wErr.Got)
		assert.Equal(t, 2, wErr.Width)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Read(writeFile(t, dir, "e.csv", ""))
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("blank lines only", func(t *testing.T) {
		_, err := Read(writeFile(t, dir, "b.csv", "\n\n"))
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := Read(writeFile(t, dir, "d.csv", "x,x\n1,2\n"))
		var dErr *DuplicateColumnError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, "x", dErr.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestReadPair(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x,y,z\na,a,1\n")
	b := writeFile(t, dir, "b.csv", "x,y,z\ne,e,2\n")

	primary, secondary, err := ReadPair(a, b)
	require.NoError(t, err)
	assert.Equal(t, primary.Header, secondary.Header)
}

func TestReadPairHeaderOrderMatters(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x,y,z\na,a,1\n")
	b := writeFile(t, dir, "b.csv", "y,x,z\na,a,1\n")

	_, _, err := ReadPair(a, b)
	var hErr *HeaderMismatchError
	require.True(t, errors.As(err, &hErr))
	assert.Equal(t, []string{"x", "y", "z"}, hErr.Primary)
	assert.Equal(t, []string{"y", "x", "z"}, hErr.Secondary)
}

func TestSameHeader(t *testing.T) {
	assert.True(t, SameHeader([]string{"x", "y"}, []string{"x", "y"}))
	assert.True(t, SameHeader(nil, []string{}))
	assert.False(t, SameHeader([]string{"x", "y"}, []string{"y", "x"}))
	assert.False(t, SameHeader([]string{"x"}, []string{"x", "y"}))
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"01", "1"},
		{" 7 ", "7"},
		{"+5", "5"},
		{"-0", "0"},
		{"1.0", "1.0"},
		{"a", "a"},
		{" a", " a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.input))
		})
	}
}

func TestTableColumn(t *testing.T) {
	tbl := &Table{Header: []string{"x", "y"}, Rows: [][]string{{"a", "1"}, {"b", "2"}}}
	assert.Equal(t, 2, tbl.Width())
	assert.Equal(t, []string{"1", "2"}, tbl.Column(1))
	assert.Equal(t, 1, tbl.ColumnIndex("y"))
	assert.Equal(t, -1, tbl.ColumnIndex("z"))
}
