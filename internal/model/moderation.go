package model

import (
	"context"
	"time"
)

// Comment is a reader comment awaiting or past moderation.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	PostTitle string    `json:"postTitle"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Approved  bool      `json:"isApproved"`
}

// RequestStatus is the review state of an author request.
type RequestStatus string

const (
	// RequestPending awaits an admin decision.
	RequestPending RequestStatus = "PENDING"
	// RequestApproved grants the applicant RoleAuthor.
	RequestApproved RequestStatus = "APPROVED"
	// RequestRejected declines the application.
	RequestRejected RequestStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// AuthorRequest is an application to become an author.
type AuthorRequest struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Motivation  string        `json:"motivation"`
	DocumentKey string        `json:"documentKey,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	Status      RequestStatus `json:"status"`
}

// ModerationService is the admin moderation API.
type ModerationService interface {
	ListComments(ctx context.Context) ([]Comment, error)
	SetCommentStatus(ctx context.Context, id string) error
	ListAuthorRequests(ctx context.Context) ([]AuthorRequest, error)
	DecideAuthorRequest(ctx context.Context, id string, status RequestStatus) error
}

// DocumentLinker produces short-lived download links for uploaded documents.
type DocumentLinker interface {
	Link(ctx context.Context, key string) (string, error)
}
