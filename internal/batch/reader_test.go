package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestReader_InvalidFile(t *testing.T) {
	file := strings.NewReader("invalid file content")

	reader := NewReader(file, newTestLogger())
	ctx := context.Background()
	ch := reader.ReadAll(ctx)

	for record := range ch {
		if record.Error == nil {
			t.Errorf("expected parse error for invalid JSON, but got none")
		}
	}
}

func TestReader_ValidFile(t *testing.T) {
	inputFile := `{"query":"lightweight irc client","limit":5}
{"query":"terminal multiplexer","sort":"stars"}`

	file := strings.NewReader(inputFile)

	ctx := context.Background()
	reader := NewReader(file, newTestLogger())

	ch := reader.ReadAll(ctx)
	count := 0
	for record := range ch {
		count += 1
		if record.Error != nil {
			t.Errorf("Error reading the search request record. Got: %s", record.Error)
		}
	}
	if count != 2 {
		t.Errorf("Expected 2 search request messages. Got: %d", count)
	}
}

func TestReader_OmittedFieldsKeepDefaults(t *testing.T) {
	file := strings.NewReader(`{"query":"http router"}`)

	reader := NewReader(file, newTestLogger())
	ch := reader.ReadAll(context.Background())

	record := <-ch
	if record.Error != nil {
		t.Fatalf("unexpected error: %v", record.Error)
	}
	if record.Request.PerPage != models.DefaultPerPage {
		t.Errorf("expected default per_page, got %d", record.Request.PerPage)
	}
	if !record.Request.UseCache {
		t.Error("expected use_cache to default to true")
	}
}

func TestReader_ContextCancellation(t *testing.T) {
	// Large input with many lines
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, `{"query":"some query"}`)
	}
	file := strings.NewReader(strings.Join(lines, "\n"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := NewReader(file, newTestLogger())

	ch := reader.ReadAll(ctx)
	count := 0
	for range ch {
		count++
		if count == 5 {
			cancel() // Cancel after 5 records
			break
		}
	}

	// Should have stopped early
	if count >= 100 {
		t.Errorf("expected early cancellation, but read all records")
	}
}

func TestReader_LineNumbers(t *testing.T) {
	inputFile := `{"query":"first"}

{"invalid json}
{"query":"second"}`

	file := strings.NewReader(inputFile)
	reader := NewReader(file, newTestLogger())

	ch := reader.ReadAll(context.Background())
	records := []InputRecord{}
	for record := range ch {
		records = append(records, record)
	}

	// Check line numbers
	if records[0].LineNumber != 1 {
		t.Errorf("first record should be line 1, got %d", records[0].LineNumber)
	}
	if records[1].LineNumber != 3 {
		t.Errorf("error record should be line 3, got %d", records[1].LineNumber)
	}
	if records[2].LineNumber != 4 {
		t.Errorf("third record should be line 4, got %d", records[2].LineNumber)
	}
}
