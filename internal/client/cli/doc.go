// Package cli is the interactive dashboard client.
//
// On start it silently restores the previous session from storage, then
// reads commands until exit. Requests to the dashboard API go through the
// token pipeline, so an expired access token is renewed transparently; when
// renewal fails the session is cleared and the user is asked to sign in
// again.
package cli
