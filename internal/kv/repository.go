// Package kv is the persistent key-value storage behind the token store, the
// credential overlays and the application settings.
//
// Every backend follows the same contract: Get returns (nil, nil) for a
// missing key, Delete of a missing key is not an error, and List returns a
// snapshot of all keys owned by the repository.
package kv

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
