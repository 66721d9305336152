package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output — JSON-документ, который каждая утилита печатает в stdout.
type Output struct {
	Success     bool     `json:"success"`
	OutputFiles []string `json:"output_files,omitempty"`
	Error       string   `json:"error,omitempty"`
	Duration    string   `json:"duration"`
	RowCount    int64    `json:"row_count,omitempty"`
	Duplicates  int      `json:"duplicates,omitempty"`
	Matched     *bool    `json:"matched,omitempty"`
	Removed     *int     `json:"removed,omitempty"`
}

// Failure заполняет Output для неуспешного запуска.
func Failure(start time.Time, stage string, err error) Output {
	return Output{
		Success:  false,
		Error:    fmt.Sprintf("%s: %v", stage, err),
		Duration: time.Since(start).String(),
	}
}

func Emit(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
