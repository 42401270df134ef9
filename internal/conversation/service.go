package conversation

import (
	"context"
	"errors"
	"time"
)

// Repository abstracts conversation-state persistence.
//
// Implementations must enforce organization filtering on every write.
type Repository interface {
	UpdatePriority(ctx context.Context, organizationID, conversationID, priority string, at time.Time) error
	AppendTags(ctx context.Context, organizationID, conversationID string, tags []string, at time.Time) error
	Assign(ctx context.Context, organizationID, conversationID, agentID string, at time.Time) error
}

var (
	ErrNotFound        = errors.New("conversation: not found")
	ErrInvalidArgument = errors.New("conversation: invalid argument")
)

// Service applies conversation-state updates pushed by the routing layer.
//
// Callers treat these updates as fire-and-forget: a failed update is logged
// upstream, never retried here.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) SetPriority(ctx context.Context, organizationID, conversationID, priority string) error {
	if organizationID == "" || conversationID == "" {
		return ErrInvalidArgument
	}
	if !IsValidPriority(priority) {
		return ErrInvalidArgument
	}
	if s.repo == nil {
		return errors.New("conversation: repository not configured")
	}
	return s.repo.UpdatePriority(ctx, organizationID, conversationID, priority, s.clock().UTC())
}

func (s *Service) AddTags(ctx context.Context, organizationID, conversationID string, tags []string) error {
	if organizationID == "" || conversationID == "" || len(tags) == 0 {
		return ErrInvalidArgument
	}
	if s.repo == nil {
		return errors.New("conversation: repository not configured")
	}
	return s.repo.AppendTags(ctx, organizationID, conversationID, tags, s.clock().UTC())
}

func (s *Service) Assign(ctx context.Context, organizationID, conversationID, agentID string) error {
	if organizationID == "" || conversationID == "" || agentID == "" {
		return ErrInvalidArgument
	}
	if s.repo == nil {
		return errors.New("conversation: repository not configured")
	}
	return s.repo.Assign(ctx, organizationID, conversationID, agentID, s.clock().UTC())
}
