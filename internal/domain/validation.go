package domain

import (
	"fmt"
	"time"
)

// ValidateTaskStatus validates a task status
func ValidateTaskStatus(status string) error {
	switch TaskStatus(status) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusBacklog:
		return nil
	default:
		return fmt.Errorf("invalid status: must be one of: todo, in_progress, done, backlog")
	}
}

// ValidateInboxStatus validates an inbox item status
func ValidateInboxStatus(status string) error {
	switch InboxStatus(status) {
	case InboxStatusPending, InboxStatusAccepted, InboxStatusDeclined:
		return nil
	default:
		return fmt.Errorf("invalid inbox status: must be one of: pending, accepted, declined")
	}
}

// ValidateAppMode validates a device app mode
func ValidateAppMode(mode string) error {
	switch AppMode(mode) {
	case AppModeOwner, AppModeContributor:
		return nil
	default:
		return fmt.Errorf("invalid mode: must be one of: owner, contributor")
	}
}

// ValidateBucketName validates a bucket name
func ValidateBucketName(name string) error {
	if name == "" {
		return fmt.Errorf("bucket name must not be empty")
	}
	return nil
}

// ValidateTaskTitle validates a task title
func ValidateTaskTitle(title string) error {
	if title == "" {
		return fmt.Errorf("task title must not be empty")
	}
	return nil
}

// ValidateTimestamp validates and parses an ISO8601 timestamp
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: expected ISO8601/RFC3339")
	}
	return t, nil
}
