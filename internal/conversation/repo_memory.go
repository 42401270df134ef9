package conversation

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests. Conversations are
// created on first write so tests need no setup step.
type MemoryRepo struct {
	mu    sync.Mutex
	convs map[string]*Conversation // organization_id + "/" + conversation_id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{convs: make(map[string]*Conversation)}
}

func (r *MemoryRepo) get(organizationID, conversationID string) *Conversation {
	key := organizationID + "/" + conversationID
	c, ok := r.convs[key]
	if !ok {
		c = &Conversation{ID: conversationID, OrganizationID: organizationID, Status: StatusOpen, Priority: PriorityNormal}
		r.convs[key] = c
	}
	return c
}

func (r *MemoryRepo) UpdatePriority(ctx context.Context, organizationID, conversationID, priority string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(organizationID, conversationID)
	c.Priority = priority
	c.UpdatedAt = at
	return nil
}

func (r *MemoryRepo) AppendTags(ctx context.Context, organizationID, conversationID string, tags []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(organizationID, conversationID)
	for _, t := range tags {
		if !containsTag(c.Tags, t) {
			c.Tags = append(c.Tags, t)
		}
	}
	c.UpdatedAt = at
	return nil
}

func (r *MemoryRepo) Assign(ctx context.Context, organizationID, conversationID, agentID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.get(organizationID, conversationID)
	c.AssignedTo = agentID
	c.UpdatedAt = at
	return nil
}

// Get returns a copy of a conversation, if one was touched.
func (r *MemoryRepo) Get(organizationID, conversationID string) (Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[organizationID+"/"+conversationID]
	if !ok {
		return Conversation{}, false
	}
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	return out, true
}

func containsTag(tags []string, t string) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}
