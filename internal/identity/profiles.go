package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"resumeHub/internal/metrics"
)

const onboardingKey = "onboardingComplete"

// Profiles reads and writes the per-user public metadata held by Clerk.
type Profiles struct {
	users *user.Client
}

// NewProfiles builds a Backend API client authenticated with the instance secret key.
func NewProfiles(secretKey string) *Profiles {
	cfg := &clerk.ClientConfig{}
	cfg.Key = clerk.String(secretKey)
	return &Profiles{users: user.NewClient(cfg)}
}

// SetOnboardingComplete merges onboardingComplete into the user's public metadata.
func (p *Profiles) SetOnboardingComplete(ctx context.Context, subject string, complete bool) error {
	raw, err := json.Marshal(map[string]bool{onboardingKey: complete})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	metadata := json.RawMessage(raw)

	start := time.Now()
	_, err = p.users.UpdateMetadata(ctx, subject, &user.UpdateMetadataParams{
		PublicMetadata: &metadata,
	})
	metrics.ObserveUpstream("identity", "update_metadata", start, err)
	if err != nil {
		return fmt.Errorf("update metadata for %s: %w", subject, err)
	}
	return nil
}

// OnboardingComplete reads the flag back; a missing key reads as false.
func (p *Profiles) OnboardingComplete(ctx context.Context, subject string) (bool, error) {
	start := time.Now()
	u, err := p.users.Get(ctx, subject)
	metrics.ObserveUpstream("identity", "get_user", start, err)
	if err != nil {
		return false, fmt.Errorf("get user %s: %w", subject, err)
	}
	return onboardingFromMetadata(u.PublicMetadata)
}

func onboardingFromMetadata(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return false, fmt.Errorf("decode public metadata: %w", err)
	}
	complete, _ := metadata[onboardingKey].(bool)
	return complete, nil
}
