package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SubmitTokenField is the hidden form field carrying the one-time submit token.
const SubmitTokenField = "submit_token"

// SubmitGuard rejects a second submission of the same rendered form.
type SubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmitGuard constructs the guard. Claims expire after ttl.
func NewSubmitGuard(client *redis.Client, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

// NewToken returns a fresh token to embed in a form.
func (g *SubmitGuard) NewToken() string {
	return uuid.NewString()
}

// Claim marks token as in use for module. A second claim returns ErrDuplicateSubmit.
func (g *SubmitGuard) Claim(ctx context.Context, module, token string) error {
	if g == nil || g.client == nil {
		return nil
	}
	if token == "" {
		return errors.New("submit token required")
	}
	if module == "" {
		return errors.New("submit module required")
	}
	ok, err := g.client.SetNX(ctx, g.key(module, token), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateSubmit
	}
	return nil
}

// Release removes a claim, typically after the remote create failed so the
// user can retry with the same form.
func (g *SubmitGuard) Release(ctx context.Context, module, token string) error {
	if g == nil || g.client == nil || token == "" {
		return nil
	}
	return g.client.Del(ctx, g.key(module, token)).Err()
}

func (g *SubmitGuard) key(module, token string) string {
	return "submit:" + module + ":" + token
}
