package reason

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/llm"
	"github.com/lxlab/oss-scout/internal/models"
)

// countingLLMClient tracks the number of calls concurrently in flight.
type countingLLMClient struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	delay    time.Duration
}

func (c *countingLLMClient) InvokeModel(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(c.delay)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()

	return &llm.LLMResponse{Content: "reason for " + req.Prompt[:min(20, len(req.Prompt))]}, nil
}

func (c *countingLLMClient) InvokeModelWithRetry(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
	return c.InvokeModel(ctx, req)
}

func repoBatch(n int) []models.ScoredRepo {
	repos := make([]models.ScoredRepo, n)
	for i := range repos {
		repos[i] = models.ScoredRepo{
			RawRepo: models.RawRepo{
				FullName: "acme/repo-" + string(rune('a'+i)),
				Stars:    i * 10,
			},
			Score: float64(i) / float64(n),
		}
	}
	return repos
}

func TestRunner_AllItemsComplete(t *testing.T) {
	client := &countingLLMClient{delay: 5 * time.Millisecond}
	g, err := NewGenerator(client, config.Default().Reason, 0, newTestLogger())
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	runner := NewRunner(g, 3, newTestLogger())

	repos := repoBatch(8)
	var got []models.ScoredRepo
	for item := range runner.Run(context.Background(), repos, models.Intent{}, "q") {
		if item.Reason == "" {
			t.Errorf("item %s emitted without a reason", item.FullName)
		}
		got = append(got, item)
	}

	if len(got) != len(repos) {
		t.Fatalf("expected %d completed items, got %d", len(repos), len(got))
	}
}

func TestRunner_BoundsConcurrency(t *testing.T) {
	client := &countingLLMClient{delay: 20 * time.Millisecond}
	g, err := NewGenerator(client, config.Default().Reason, 0, newTestLogger())
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	runner := NewRunner(g, 2, newTestLogger())

	for range runner.Run(context.Background(), repoBatch(10), models.Intent{}, "q") {
	}

	if client.peak > 2 {
		t.Errorf("expected at most 2 calls in flight, saw %d", client.peak)
	}
}

func TestRunner_CancellationStopsNewCalls(t *testing.T) {
	client := &countingLLMClient{delay: 30 * time.Millisecond}
	g, err := NewGenerator(client, config.Default().Reason, 0, newTestLogger())
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	runner := NewRunner(g, 1, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	ch := runner.Run(ctx, repoBatch(10), models.Intent{}, "q")
	<-ch // first item
	cancel()

	count := 1
	for range ch {
		count++
	}

	// The channel must close promptly and without delivering all ten items.
	if count >= 10 {
		t.Errorf("expected cancellation to abandon pending items, got %d", count)
	}
}
