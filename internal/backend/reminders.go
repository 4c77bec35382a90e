package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/notexe/ledger-reminders/internal/reminder"
)

var _ reminder.Backend = (*Client)(nil)

// List fetches every reminder of the current user.
func (c *Client) List(ctx context.Context) ([]reminder.Reminder, error) {
	var list []reminder.Reminder
	if err := c.do(ctx, http.MethodGet, "/reminders/list", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return list, nil
}

// Create stores a new manual reminder and returns it with its id.
func (c *Client) Create(ctx context.Context, req reminder.CreateRequest) (*reminder.Reminder, error) {
	var created reminder.Reminder
	if err := c.do(ctx, http.MethodPost, "/reminders/", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	if created.ID == 0 {
		return nil, ErrNoReminderID
	}
	return &created, nil
}

func (c *Client) MarkRead(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/reminders/%d/read", id), nil, nil); err != nil {
		return fmt.Errorf("failed to mark reminder %d as read: %w", id, err)
	}
	return nil
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPatch, "/reminders/read-all", nil, nil); err != nil {
		return fmt.Errorf("failed to mark all reminders as read: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/reminders/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete reminder %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every reminder that is already active. Manual
// reminders still in the future are kept by the server.
func (c *Client) DeleteAll(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/reminders/delete-all", nil, nil); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}
	return nil
}
