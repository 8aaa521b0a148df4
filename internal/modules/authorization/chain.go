package authorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// maxChainDepth bounds upstream traversal. Agent trees are created with
// immutable parents, so a chain longer than this means corrupted data
// (most likely a cycle) and traversal must abort rather than spin.
const maxChainDepth = 32

// ErrChainTooDeep is returned when an ownership chain exceeds maxChainDepth.
// Order validation aborts on it; it is never silently truncated.
var ErrChainTooDeep = errors.New("agent ownership chain exceeds maximum depth")

// ChainEntry is one agent in an upstream ownership chain.
type ChainEntry struct {
	ID            uuid.UUID
	Level         string
	ParentAgentID *uuid.UUID
}

// resolveUpstreamChain walks parent references from the given owner up to
// the tenant root, returning the visited agents closest-first (the owner
// itself is the first entry). Tenants have no upstream, so the chain is
// empty. A missing agent record truncates the chain instead of failing:
// the remaining prefix is still meaningful.
func (s *service) resolveUpstreamChain(ctx context.Context, ownerType OwnerType, ownerID uuid.UUID) ([]*ChainEntry, error) {
	if ownerType == OwnerTenant {
		return nil, nil
	}

	chain := make([]*ChainEntry, 0, 4)
	next := &ownerID
	for steps := 0; next != nil; steps++ {
		if steps >= maxChainDepth {
			return nil, ErrChainTooDeep
		}
		a, err := s.repo.FindAgent(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("resolve upstream chain: %w", err)
		}
		if a == nil {
			break
		}
		chain = append(chain, &ChainEntry{
			ID:            a.ID,
			Level:         a.Level,
			ParentAgentID: a.ParentAgentID,
		})
		next = a.ParentAgentID
	}
	return chain, nil
}
