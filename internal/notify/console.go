// Package notify presents notifications on a terminal.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.Notifier = (*Console)(nil)

// Console writes notifications as lines to w. A loading notification stays
// pending until one with the same ID replaces it.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	pending map[string]model.Notification
	logger  *logger.Logger
}

func NewConsole(w io.Writer, logger *logger.Logger) *Console {
	return &Console{
		w:       w,
		pending: make(map[string]model.Notification),
		logger:  logger,
	}
}

func (c *Console) Notify(ctx context.Context, n model.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, replaces := c.pending[n.ID]
	if n.Kind == model.NotificationLoading && n.ID != "" {
		c.pending[n.ID] = n
	} else {
		delete(c.pending, n.ID)
	}

	line := fmt.Sprintf("[%s] %s", n.Kind, n.Title)
	if n.Description != "" {
		line += ": " + n.Description
	}
	fmt.Fprintln(c.w, line)

	c.logger.DebugContext(ctx, "Notifier: notification shown",
		"id", n.ID,
		"kind", string(n.Kind),
		"replaces_pending", replaces)
}

// Pending returns the loading notifications not yet replaced.
func (c *Console) Pending() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, 0, len(c.pending))
	for _, n := range c.pending {
		out = append(out, n)
	}
	return out
}
