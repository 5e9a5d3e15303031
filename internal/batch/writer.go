package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Writer serializes results. Format "jsonl" writes one result per line as
// they arrive; "summary" accumulates counts and writes a single object on
// Close.
type Writer struct {
	out    io.Writer
	format string
	logger *zerolog.Logger

	total   int
	errored int
	items   int
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case "jsonl", "summary":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	return &Writer{
		out:    out,
		format: format,
		logger: logger,
	}, nil
}

func (w *Writer) Write(result Result) error {
	w.total++
	if result.Error != "" {
		w.errored++
	}
	if result.Response != nil {
		w.items += len(result.Response.Results)
	}

	if w.format != "jsonl" {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if _, err := fmt.Fprintf(w.out, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}

type summary struct {
	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	TotalItems  int `json:"total_items"`
	AvgPerQuery int `json:"avg_items_per_query"`
}

func (w *Writer) Close() error {
	if w.format != "summary" {
		return nil
	}

	s := summary{
		Total:      w.total,
		Succeeded:  w.total - w.errored,
		Failed:     w.errored,
		TotalItems: w.items,
	}
	if s.Succeeded > 0 {
		s.AvgPerQuery = w.items / s.Succeeded
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = fmt.Fprintf(w.out, "%s\n", data)
	return err
}
