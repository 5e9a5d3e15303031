// Package batch runs many search requests from a JSONL file through the
// pipeline with a bounded worker pool.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

// InputRecord is one parsed line of the input file. A malformed line
// carries its parse error instead of failing the whole run.
type InputRecord struct {
	Request    models.SearchRequest
	LineNumber int
	Error      error
}

type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logger,
	}
}

// ReadAll streams records from the source, one per non-empty line. The
// channel closes at EOF or when ctx is cancelled.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}

			// Unmarshal over a pre-filled request so omitted fields keep
			// their defaults instead of zeroing out.
			req := models.DefaultRequest("")
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
				r.logger.Warn().Int("line", lineNumber).Err(err).Msg("Skipping malformed record")
			} else {
				record.Request = req
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	return out
}
