package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/inkdesk/internal/model"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.LoginResult), args.Error(1)
}

func (m *mockAuth) CurrentUser(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

type mockRevokingAuth struct {
	mockAuth
}

func (m *mockRevokingAuth) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

type mockModeration struct {
	mock.Mock
}

func (m *mockModeration) ListComments(ctx context.Context) ([]model.Comment, error) {
	args := m.Called(ctx)
	comments, _ := args.Get(0).([]model.Comment)
	return comments, args.Error(1)
}

func (m *mockModeration) SetCommentStatus(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockModeration) ListAuthorRequests(ctx context.Context) ([]model.AuthorRequest, error) {
	args := m.Called(ctx)
	requests, _ := args.Get(0).([]model.AuthorRequest)
	return requests, args.Error(1)
}

func (m *mockModeration) DecideAuthorRequest(ctx context.Context, id string, status model.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockLinker struct {
	mock.Mock
}

func (m *mockLinker) Link(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
