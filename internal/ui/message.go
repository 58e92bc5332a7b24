package ui

import (
	"pastify/internal/models"
	"pastify/internal/tasks"
)

// progressUpdateMsg carries one engine progress update into the Update loop.
type progressUpdateMsg tasks.ProgressUpdate

// submitCompleteMsg signals that the resolve-and-commit run finished.
type submitCompleteMsg struct {
	result *models.CommitResult
	err    error
}
