// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/progressor-app/progressor/internal/domain/chat"
	"github.com/progressor-app/progressor/internal/domain/task"
	"github.com/progressor-app/progressor/internal/domain/user"
)

// Store is the port interface for persistence.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)

	// Tasks
	CreateTask(ctx context.Context, userID string, req task.CreateRequest) (*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context, userID string, f task.Filter) ([]task.Task, error)
	CountTasks(ctx context.Context, userID string, f task.Filter) (int, error)
	UpdateTaskStatus(ctx context.Context, id string, status task.Status) error
	DeleteTask(ctx context.Context, id string) error

	// Messages
	CreateMessage(ctx context.Context, m *chat.Message) error
	ListMessages(ctx context.Context, userID string, limit int) ([]chat.Message, error)
}
