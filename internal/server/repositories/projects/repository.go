// Package projects gives the real-time core read access to projects and
// their membership. Project management itself lives elsewhere.
package projects

import (
	"context"

	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	// Members returns the ids of every user in the project.
	Members(ctx context.Context, projectID string) ([]string, error)
}
