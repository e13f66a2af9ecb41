// Package state holds the in-memory projection of the session that the CLI
// and the request pipeline read from. It is never authoritative: the token
// store decides expiry.
package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophdash/internal/client/session"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

// AuthState is a snapshot of the container.
type AuthState struct {
	User            *models.User
	AccessToken     string
	IsAuthenticated bool
	Loading         bool
	Error           string
	ErrorCode       session.Code
}

// Operation names the asynchronous flows that drive the container.
type Operation string

const (
	OpLogin          Operation = "login"
	OpRestoreSession Operation = "restoreSession"
	OpLogout         Operation = "logout"
)

// Phase is the stage of an Operation.
type Phase string

const (
	Pending   Phase = "pending"
	Fulfilled Phase = "fulfilled"
	Rejected  Phase = "rejected"
)

// Action is one transition. User and AccessToken are read on fulfilled
// login and restore; Err on rejection.
type Action struct {
	Op          Operation
	Phase       Phase
	User        *models.User
	AccessToken string
	Err         error
}

// Listener is notified after every change with the previous and the new
// state.
type Listener func(prev, next AuthState)

type Container struct {
	mu        sync.RWMutex
	state     AuthState
	listeners map[int]Listener
	nextID    int
}

func New() *Container {
	return &Container{listeners: map[int]Listener{}}
}

func (c *Container) Snapshot() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Container) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.AccessToken
}

// Subscribe registers l and returns a function that removes it.
func (c *Container) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Dispatch applies a to the state and notifies listeners.
func (c *Container) Dispatch(a Action) {
	c.update(func(s AuthState) AuthState { return reduce(s, a) })
}

// SetAccessToken replaces the token after a silent renewal, leaving the
// rest of the state untouched.
func (c *Container) SetAccessToken(token string) {
	c.update(func(s AuthState) AuthState {
		s.AccessToken = token
		return s
	})
}

// ClearAuth resets the container to its initial state.
func (c *Container) ClearAuth() {
	c.update(func(AuthState) AuthState { return AuthState{} })
}

func (c *Container) update(fn func(AuthState) AuthState) {
	c.mu.Lock()
	prev := c.state
	next := fn(prev)
	c.state = next
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}

func reduce(s AuthState, a Action) AuthState {
	if a.Phase == Pending {
		s.Loading = true
		s.Error = ""
		s.ErrorCode = ""
		return s
	}

	switch a.Op {
	case OpLogin, OpRestoreSession:
		if a.Phase == Fulfilled {
			return AuthState{User: a.User, AccessToken: a.AccessToken, IsAuthenticated: true}
		}
		s.IsAuthenticated = false
		s.Loading = false
		if a.Op == OpLogin && a.Err != nil {
			s.Error = a.Err.Error()
			if code, ok := session.CodeOf(a.Err); ok {
				s.ErrorCode = code
			}
		}
		return s

	case OpLogout:
		return AuthState{}
	}
	return s
}

// Authenticator is the part of the session manager the thunks drive.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*session.LoginResult, error)
	RestoreSession(ctx context.Context) (*session.RestoreResult, error)
	Logout(ctx context.Context) error
}

// Login runs a login through pending and then fulfilled or rejected.
func (c *Container) Login(ctx context.Context, auth Authenticator, email, password string) error {
	c.Dispatch(Action{Op: OpLogin, Phase: Pending})

	res, err := auth.Login(ctx, email, password)
	if err != nil {
		c.Dispatch(Action{Op: OpLogin, Phase: Rejected, Err: err})
		return err
	}

	user := res.User
	c.Dispatch(Action{Op: OpLogin, Phase: Fulfilled, User: &user, AccessToken: res.Tokens.AccessToken})
	return nil
}

// RestoreSession is silent on failure: the container ends unauthenticated
// with no error recorded.
func (c *Container) RestoreSession(ctx context.Context, auth Authenticator) error {
	c.Dispatch(Action{Op: OpRestoreSession, Phase: Pending})

	res, err := auth.RestoreSession(ctx)
	if err != nil {
		c.Dispatch(Action{Op: OpRestoreSession, Phase: Rejected, Err: err})
		return err
	}

	user := res.User
	c.Dispatch(Action{Op: OpRestoreSession, Phase: Fulfilled, User: &user, AccessToken: res.AccessToken})
	return nil
}

// Logout always ends in the initial state, whatever the manager reports.
func (c *Container) Logout(ctx context.Context, auth Authenticator) error {
	c.Dispatch(Action{Op: OpLogout, Phase: Pending})
	err := auth.Logout(ctx)
	c.Dispatch(Action{Op: OpLogout, Phase: Fulfilled})
	return err
}
