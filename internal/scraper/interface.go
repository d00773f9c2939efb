// Package scraper fetches job postings from the supported boards and turns
// them into the normalized posting table the outreach run consumes.
package scraper

import (
	"context"
	"errors"

	"github.com/jimezsa/jobmail/internal/models"
)

var (
	ErrNotImplemented = errors.New("scraper not implemented")
	ErrUnknownBoard   = errors.New("unknown job board")
)

type Scraper interface {
	Name() string
	Search(ctx context.Context, params models.SearchParams) ([]models.Posting, error)
}
