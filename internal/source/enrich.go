package source

import (
	"strings"

	"github.com/vanshika/linktrace/backend/internal/domain"
)

const (
	entityScanLimit = 100
	entityLimit     = 20
	introRunes      = 1000
)

var (
	studioKeywords  = []string{"Studio", "Studios", "Pictures", "Films", "Entertainment", "Productions"}
	companyKeywords = []string{"Company", "Corporation", "Inc.", "LLC", "Records", "Music"}
)

// ExtractEntities tags neighbor titles by keyword. Only the first 100 links
// are considered and at most 20 entities are returned. A link that matches
// neither keyword list is tagged related when the intro text mentions it.
func ExtractEntities(text string, links []string) []domain.Entity {
	intro := truncateRunes(text, introRunes)
	if len(links) > entityScanLimit {
		links = links[:entityScanLimit]
	}

	entities := []domain.Entity{}
	for _, link := range links {
		var kind string
		switch {
		case containsAny(link, studioKeywords):
			kind = domain.EntityStudio
		case containsAny(link, companyKeywords):
			kind = domain.EntityCompany
		case strings.Contains(intro, link):
			kind = domain.EntityRelated
		default:
			continue
		}
		entities = append(entities, domain.Entity{Name: link, Type: kind})
		if len(entities) == entityLimit {
			break
		}
	}
	return entities
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
