package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lxlab/oss-scout/internal/models"
)

// Publisher appends completed search results to a result stream.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
	}
}

// publishedResult is the wire form of one completed run on the result
// stream. RequestID echoes the id of the message that triggered the run.
type publishedResult struct {
	RequestID string                `json:"request_id"`
	Response  models.SearchResponse `json:"response,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, requestID string, response models.SearchResponse, runErr error) error {
	result := publishedResult{
		RequestID: requestID,
		Response:  response,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"payload": string(payload)},
	}).Err()
}
