// session/provider.go

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retailhq/console/access"
	"github.com/retailhq/console/client"
	console_errors "github.com/retailhq/console/errors"
	logger "github.com/retailhq/console/logging"
	"github.com/retailhq/console/model"
	"github.com/retailhq/console/util"
)

// Claims are the identity claims the admin API embeds in its access
// tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	StoreID     string   `json:"store_id"`
}

// ParseIdentity extracts claims without verifying the signature. The
// console only uses them for display and preliminary identity; the API
// verifies every request server-side.
func ParseIdentity(token string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}
	return claims, nil
}

// Provider holds the live session and store feature state the access gate
// reads. Loading starts false-y: until Load completes, snapshots report
// Loading and the gate renders neutrally.
type Provider struct {
	mu     sync.RWMutex
	client *client.Client
	tokens client.TokenSource
	bus    *util.EventBus

	loaded        bool
	authenticated bool
	user          model.User
	store         model.StoreConfig
}

func NewProvider(c *client.Client, tokens client.TokenSource, bus *util.EventBus) *Provider {
	return &Provider{client: c, tokens: tokens, bus: bus}
}

// Load fetches the current user and store config concurrently and marks
// the session ready. An unauthorized response is not an error: the session
// settles in the unauthenticated state and the gate redirects.
func (p *Provider) Load(ctx context.Context) error {
	if p.tokens != nil {
		if token, err := p.tokens.Token(ctx); err == nil && token != "" {
			if claims, err := ParseIdentity(token); err == nil && claims.Subject != "" {
				// Preliminary identity so the very first logged calls
				// already carry a user id.
				p.client.SetUserID(claims.Subject)
			}
		}
	}

	var user model.User
	var store model.StoreConfig

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = p.client.CurrentUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		store, err = p.client.StoreConfig(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, console_errors.ErrUnauthorized) {
			p.mu.Lock()
			p.loaded = true
			p.authenticated = false
			p.mu.Unlock()
			logger.Warn("Session load rejected, not signed in")
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	p.mu.Lock()
	p.loaded = true
	p.authenticated = true
	p.user = user
	p.store = store
	p.mu.Unlock()

	p.client.SetUserID(user.ID)
	if p.bus != nil {
		p.bus.Publish(ctx, util.Event{Type: "session.loaded", Resource: "session", Payload: user})
	}

	logger.Info("Session loaded",
		zap.String("userID", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("storeID", store.StoreID))
	return nil
}

// Refresh re-fetches session state, e.g. after a plan change.
func (p *Provider) Refresh(ctx context.Context) error {
	return p.Load(ctx)
}

// Snapshot implements access.Provider.
func (p *Provider) Snapshot(ctx context.Context) access.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return access.Snapshot{
		Loading:       !p.loaded,
		Authenticated: p.authenticated,
		User:          p.user,
		Features:      p.store.Features,
		Billing:       p.store.Billing,
	}
}

// User returns the signed-in user, or ErrSessionNotLoaded before Load.
func (p *Provider) User() (model.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return model.User{}, console_errors.ErrSessionNotLoaded
	}
	if !p.authenticated {
		return model.User{}, console_errors.ErrUnauthorized
	}
	return p.user, nil
}

// Store returns the loaded store config.
func (p *Provider) Store() (model.StoreConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return model.StoreConfig{}, console_errors.ErrSessionNotLoaded
	}
	return p.store, nil
}
