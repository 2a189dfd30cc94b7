package usecases

import (
	"context"
	"sort"
	"strings"

	"wabiz/internal/entities"
	"wabiz/internal/interfaces"
)

// KnowledgeStore ranks a tenant's active knowledge entries against a
// free-text query. The scoring is a substring-match heuristic, not a
// text-search ranking: it exists so small business FAQs surface on the
// obvious keywords, nothing more.
type KnowledgeStore struct {
	repo interfaces.KnowledgeRepository
}

func NewKnowledgeStore(repo interfaces.KnowledgeRepository) *KnowledgeStore {
	return &KnowledgeStore{repo: repo}
}

// relevanceScore returns the match score of one entry against the
// lowercased query: +3 title, +2 content, +2 any keyword, +1 any tag,
// plus priority*0.5. An entry with no field hit scores 0 regardless of
// priority.
func relevanceScore(entry *entities.KnowledgeEntry, query string) float64 {
	var fieldScore float64
	if strings.Contains(strings.ToLower(entry.Title), query) {
		fieldScore += 3
	}
	if strings.Contains(strings.ToLower(entry.Content), query) {
		fieldScore += 2
	}
	for _, kw := range entry.Keywords {
		if strings.Contains(strings.ToLower(kw), query) {
			fieldScore += 2
			break
		}
	}
	for _, tag := range entry.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			fieldScore += 1
			break
		}
	}
	if fieldScore == 0 {
		return 0
	}
	return fieldScore + float64(entry.Priority)*0.5
}

// Search scores the tenant's active entries against query and returns
// the top matches, ordered by score descending, ties broken by
// priority then recency. An unknown tenant simply has no entries.
func (s *KnowledgeStore) Search(ctx context.Context, tenantID, query string, limit int) ([]entities.RelevanceMatch, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return []entities.RelevanceMatch{}, nil
	}

	entries, err := s.repo.FindActive(ctx, tenantID, query)
	if err != nil {
		return nil, err
	}

	matches := []entities.RelevanceMatch{}
	for i := range entries {
		score := relevanceScore(&entries[i], query)
		if score > 0 {
			matches = append(matches, entities.RelevanceMatch{Entry: entries[i], Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Priority != b.Entry.Priority {
			return a.Entry.Priority > b.Entry.Priority
		}
		return a.Entry.UpdatedAt.After(b.Entry.UpdatedAt)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetAllActiveForTenant returns every active entry, priority first,
// for building a full-knowledge context when no query applies.
func (s *KnowledgeStore) GetAllActiveForTenant(ctx context.Context, tenantID string) ([]entities.KnowledgeEntry, error) {
	return s.repo.FindActive(ctx, tenantID, "")
}
