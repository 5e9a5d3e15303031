package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lxlab/oss-scout/internal/models"
)

type stubSearcher struct {
	calls atomic.Int64
	fail  bool
}

func (s *stubSearcher) Search(_ context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	s.calls.Add(1)
	if s.fail {
		return models.SearchResponse{}, errors.New("upstream down")
	}
	return models.SearchResponse{
		Query:   req.Query,
		Results: []models.ScoredRepo{{RawRepo: models.RawRepo{FullName: "a/one"}, Score: 0.5, Reason: "r"}},
	}, nil
}

func makeRecords(n int) []InputRecord {
	records := make([]InputRecord, n)
	for i := range records {
		records[i] = InputRecord{
			Request:    models.DefaultRequest("query"),
			LineNumber: i + 1,
		}
	}
	return records
}

func TestProcessor_AllRecordsProcessed(t *testing.T) {
	searcher := &stubSearcher{}
	processor := NewProcessor(searcher, 3, newTestLogger())

	results := processor.Process(context.Background(), makeRecords(10))

	count := 0
	for result := range results {
		count++
		if result.Error != "" {
			t.Errorf("unexpected error on line %d: %s", result.LineNumber, result.Error)
		}
		if result.Response == nil || len(result.Response.Results) != 1 {
			t.Errorf("missing response on line %d", result.LineNumber)
		}
	}
	if count != 10 {
		t.Errorf("expected 10 results, got %d", count)
	}
	if searcher.calls.Load() != 10 {
		t.Errorf("expected 10 search calls, got %d", searcher.calls.Load())
	}
}

func TestProcessor_ParseErrorsPassThrough(t *testing.T) {
	searcher := &stubSearcher{}
	processor := NewProcessor(searcher, 2, newTestLogger())

	records := []InputRecord{
		{LineNumber: 1, Error: errors.New("line 1: bad json")},
		{Request: models.DefaultRequest("ok"), LineNumber: 2},
	}

	errored := 0
	for result := range processor.Process(context.Background(), records) {
		if result.Error != "" {
			errored++
		}
	}
	if errored != 1 {
		t.Errorf("expected 1 errored result, got %d", errored)
	}
	if searcher.calls.Load() != 1 {
		t.Errorf("parse-errored record must not reach the pipeline, got %d calls", searcher.calls.Load())
	}
}

func TestProcessor_SearchFailuresBecomeErrorResults(t *testing.T) {
	searcher := &stubSearcher{fail: true}
	processor := NewProcessor(searcher, 2, newTestLogger())

	for result := range processor.Process(context.Background(), makeRecords(3)) {
		if result.Error == "" {
			t.Errorf("expected error result on line %d", result.LineNumber)
		}
	}
}

func TestWriter_JSONL(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, "jsonl", newTestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := models.SearchResponse{Query: "q"}
	if err := writer.Write(Result{LineNumber: 1, Query: "q", Response: &resp}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := writer.Write(Result{LineNumber: 2, Query: "bad", Error: "upstream down"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "upstream down") {
		t.Errorf("error result should carry its message: %s", lines[1])
	}
}

func TestWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, "summary", newTestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := models.SearchResponse{Results: []models.ScoredRepo{{}, {}}}
	writer.Write(Result{LineNumber: 1, Response: &resp})
	writer.Write(Result{LineNumber: 2, Error: "boom"})

	if buf.Len() != 0 {
		t.Error("summary format should not write per-result output")
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"total": 2`, `"succeeded": 1`, `"failed": 1`, `"total_items": 2`} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %s: %s", want, out)
		}
	}
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "xml", newTestLogger()); err == nil {
		t.Error("expected error for unsupported format")
	}
}
