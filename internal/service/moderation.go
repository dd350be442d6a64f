package service

import (
	"context"
	"fmt"

	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
	"github.com/dtroode/inkdesk/internal/optimistic"
)

// Comments is the admin comment moderation view.
type Comments struct {
	api     model.ModerationService
	session *Session
	list    *optimistic.List[model.Comment]
	logger  *logger.Logger
}

func NewComments(
	api model.ModerationService,
	session *Session,
	notifier model.Notifier,
	logger *logger.Logger,
) *Comments {
	return &Comments{
		api:     api,
		session: session,
		list:    optimistic.NewList(func(c model.Comment) string { return c.ID }, notifier, logger),
		logger:  logger,
	}
}

// List exposes the underlying collection for rendering and subscriptions.
func (c *Comments) List() *optimistic.List[model.Comment] {
	return c.list
}

// Load fetches every comment and replaces the collection.
func (c *Comments) Load(ctx context.Context) error {
	if err := c.session.RequireRole(model.RoleAdmin); err != nil {
		return err
	}

	comments, err := c.api.ListComments(ctx)
	if err != nil {
		c.logger.Error("Comments: failed to load",
			"error", err.Error())
		return fmt.Errorf("failed to list comments: %w", err)
	}

	c.list.Set(comments)
	c.logger.Debug("Comments: loaded",
		"count", len(comments))
	return nil
}

// Toggle flips the approval status of a comment.
func (c *Comments) Toggle(ctx context.Context, id string) error {
	if err := c.session.RequireRole(model.RoleAdmin); err != nil {
		return err
	}

	current, ok := c.list.Get(id)
	if !ok {
		return model.ErrItemNotFound
	}

	pending, success := "Approving comment...", "Comment approved"
	if current.Approved {
		pending, success = "Blocking comment...", "Comment blocked"
	}

	return c.list.Mutate(ctx, optimistic.Mutation[model.Comment]{
		ID: id,
		Apply: func(cm model.Comment) model.Comment {
			cm.Approved = !cm.Approved
			return cm
		},
		Call: func(ctx context.Context) error {
			return c.api.SetCommentStatus(ctx, id)
		},
		Pending:  pending,
		Success:  success,
		Fallback: "Failed to update comment",
	})
}

// AuthorRequests is the admin review queue of pending author applications.
type AuthorRequests struct {
	api       model.ModerationService
	session   *Session
	documents model.DocumentLinker
	list      *optimistic.List[model.AuthorRequest]
	logger    *logger.Logger
}

// NewAuthorRequests creates the review queue. documents may be nil when
// document storage is not configured.
func NewAuthorRequests(
	api model.ModerationService,
	session *Session,
	documents model.DocumentLinker,
	notifier model.Notifier,
	logger *logger.Logger,
) *AuthorRequests {
	return &AuthorRequests{
		api:       api,
		session:   session,
		documents: documents,
		list:      optimistic.NewList(func(r model.AuthorRequest) string { return r.ID }, notifier, logger),
		logger:    logger,
	}
}

func (a *AuthorRequests) List() *optimistic.List[model.AuthorRequest] {
	return a.list
}

// Load fetches author requests and keeps only pending ones.
func (a *AuthorRequests) Load(ctx context.Context) error {
	if err := a.session.RequireRole(model.RoleAdmin); err != nil {
		return err
	}

	requests, err := a.api.ListAuthorRequests(ctx)
	if err != nil {
		a.logger.Error("Author requests: failed to load",
			"error", err.Error())
		return fmt.Errorf("failed to list author requests: %w", err)
	}

	pending := make([]model.AuthorRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == model.RequestPending {
			pending = append(pending, r)
		}
	}

	a.list.Set(pending)
	a.logger.Debug("Author requests: loaded",
		"total", len(requests),
		"pending", len(pending))
	return nil
}

func (a *AuthorRequests) Approve(ctx context.Context, id string) error {
	return a.decide(ctx, id, model.RequestApproved)
}

func (a *AuthorRequests) Reject(ctx context.Context, id string) error {
	return a.decide(ctx, id, model.RequestRejected)
}

func (a *AuthorRequests) decide(ctx context.Context, id string, status model.RequestStatus) error {
	if err := a.session.RequireRole(model.RoleAdmin); err != nil {
		return err
	}

	pending, success, fallback := "Approving request...", "Request approved", "Failed to approve request"
	if status == model.RequestRejected {
		pending, success, fallback = "Rejecting request...", "Request rejected", "Failed to reject request"
	}

	return a.list.Mutate(ctx, optimistic.Mutation[model.AuthorRequest]{
		ID: id,
		Apply: func(r model.AuthorRequest) model.AuthorRequest {
			r.Status = status
			return r
		},
		Call: func(ctx context.Context) error {
			return a.api.DecideAuthorRequest(ctx, id, status)
		},
		RemoveOnSuccess: true,
		Pending:         pending,
		Success:         success,
		Fallback:        fallback,
	})
}

// DocumentURL returns a short-lived download link for the document attached
// to a pending request.
func (a *AuthorRequests) DocumentURL(ctx context.Context, id string) (string, error) {
	if err := a.session.RequireRole(model.RoleAdmin); err != nil {
		return "", err
	}
	if a.documents == nil {
		return "", model.ErrDocumentsDisabled
	}

	r, ok := a.list.Get(id)
	if !ok {
		return "", model.ErrItemNotFound
	}
	if r.DocumentKey == "" {
		return "", model.ErrNotFound
	}

	link, err := a.documents.Link(ctx, r.DocumentKey)
	if err != nil {
		a.logger.Error("Author requests: failed to link document",
			"request_id", id,
			"error", err.Error())
		return "", fmt.Errorf("failed to link document: %w", err)
	}
	return link, nil
}
