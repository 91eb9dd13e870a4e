package games

import (
	"context"
	"log"
	"strings"

	"gamehub/pkg/models"
)

// localSearchFloor is the result count below which search reaches out to
// the remote catalog to top up the list.
const localSearchFloor = 3

// Search runs the layered search: full-text first, substring match when
// full-text errors or finds nothing, then a remote top-up merge when the
// local list stays under the floor. A remote failure only degrades the
// result back to the local list.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]models.Game, error) {
	rows, err := s.searchFullText(ctx, query, limit)
	if err != nil || len(rows) == 0 {
		if err != nil {
			log.Printf("[games] full-text search failed, falling back to substring: %v", err)
		}
		rows, err = s.searchSubstring(ctx, query, limit)
		if err != nil {
			return nil, &StoreError{Op: "search", Err: err}
		}
	}

	genres, platforms := s.lookupMaps(ctx)
	local := s.toGames(rows, genres, platforms)
	if len(local) >= localSearchFloor || s.Remote == nil {
		return truncate(local, limit), nil
	}

	remote, err := s.Remote.Search(ctx, query, limit)
	if err != nil {
		log.Printf("[games] remote search fallback failed: %v", err)
		return truncate(local, limit), nil
	}
	return truncate(mergeGames(local, remote), limit), nil
}

func (s *Store) searchFullText(ctx context.Context, query string, limit int) ([]gameRow, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+gameSelect+` FROM games
		WHERE id IN (SELECT rowid FROM games_fts WHERE games_fts MATCH ?)
			AND cover_image_id IS NOT NULL
		ORDER BY rating_count DESC
		LIMIT ?`, ftsMatch(query), limit)
	if err != nil {
		return nil, err
	}
	return scanGameRows(rows)
}

func (s *Store) searchSubstring(ctx context.Context, query string, limit int) ([]gameRow, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+gameSelect+` FROM games
		WHERE LOWER(name) LIKE ? AND cover_image_id IS NOT NULL
		ORDER BY rating_count DESC
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	return scanGameRows(rows)
}

// ftsMatch quotes each term so user input cannot reach the match-syntax
// parser, joining terms with the implicit AND.
func ftsMatch(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, "")+`"`)
	}
	return strings.Join(quoted, " ")
}

// mergeGames concatenates local then remote results, dropping later
// duplicates so local rows win on id collisions.
func mergeGames(local, remote []models.Game) []models.Game {
	seen := make(map[int64]bool, len(local)+len(remote))
	merged := make([]models.Game, 0, len(local)+len(remote))
	for _, g := range append(local, remote...) {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		merged = append(merged, g)
	}
	return merged
}

func truncate(games []models.Game, limit int) []models.Game {
	if len(games) > limit {
		return games[:limit]
	}
	return games
}
