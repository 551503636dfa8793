// Package session persists conversation state between turns so the HTTP
// surface can stay stateless. Two backends are provided: Redis for
// single-region deployments and DynamoDB where the platform already runs
// on AWS.
package session

import (
	"context"
	"errors"

	"github.com/harborhealth/appointment-agent/internal/dialogue"
)

// ErrSessionNotFound indicates the conversation ID has no stored state,
// either because it never existed or because its TTL expired.
var ErrSessionNotFound = errors.New("session: not found")

// Store saves and restores conversation state keyed by conversation ID.
type Store interface {
	Save(ctx context.Context, state *dialogue.State) error
	Load(ctx context.Context, conversationID string) (*dialogue.State, error)
	Delete(ctx context.Context, conversationID string) error
}
