// Package client contains the dashboard API clients used by the CLI.
//
// HTTPClient reads the REST endpoints (ping and the dashboard, contents and
// reports resources). HealthClient calls the gRPC health service. Neither
// handles tokens itself: callers pass an http.Client or an interceptor built
// by the pipeline package.
//
// Failures are reported as ErrUnauthorized, ErrUnavailable or ErrNotFound
// where the status allows, so callers can match them with errors.Is.
package client
