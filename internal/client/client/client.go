package client

import (
	"context"
	"encoding/json"
)

// Resources served by the dashboard API.
var Resources = []string{"dashboard", "contents", "reports"}

type Client interface {
	Ping(ctx context.Context) error
	Resource(ctx context.Context, name string) (json.RawMessage, error)
}
