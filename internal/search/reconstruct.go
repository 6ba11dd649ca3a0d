package search

import (
	"context"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

const detailEntityLimit = 5

// reconstruct joins the start chain and the end chain at meet, which both
// frontiers have visited.
func reconstruct(meet string, fwd, bwd *frontier) []string {
	head := fwd.chain(meet)
	path := make([]string, 0, len(head)+bwd.depth[meet])
	for i := len(head) - 1; i >= 0; i-- {
		path = append(path, head[i])
	}
	tail := bwd.chain(meet)
	return append(path, tail[1:]...)
}

// buildDetails returns one record per path position. Title is the path entry
// even when the page was resolved under another title.
func buildDetails(ctx context.Context, g Graph, path []string) []domain.PathDetail {
	details := make([]domain.PathDetail, 0, len(path))
	for step, title := range path {
		page := g.Info(ctx, title)
		entities := page.Entities
		if len(entities) > detailEntityLimit {
			entities = entities[:detailEntityLimit]
		}
		details = append(details, domain.PathDetail{
			Title:    title,
			Extract:  page.Extract,
			Entities: append([]domain.Entity{}, entities...),
			Step:     step,
		})
	}
	return details
}
