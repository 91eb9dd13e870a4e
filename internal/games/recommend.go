package games

import (
	"context"
	"fmt"

	"gamehub/pkg/models"
)

// RecommendError marks a failed similarity query. Handlers use it to keep
// recommendation failures distinct from plain catalog reads.
type RecommendError struct {
	Err error
}

func (e *RecommendError) Error() string {
	return fmt.Sprintf("games: recommendation query failed: %v", e.Err)
}

func (e *RecommendError) Unwrap() error { return e.Err }

// recommendQuery scores every other game by overlap with the seed game:
// shared genres weigh 2, shared themes 1, shared platforms 0.5. Ties break
// on review count.
const recommendQuery = `
SELECT id, name, slug, summary, cover_image_id, rating, rating_count,
	first_release_date, genre_ids, platform_ids, similarity_score
FROM (
	SELECT g.*,
		(SELECT COUNT(*) FROM game_genres a JOIN game_genres b ON a.genre_id = b.genre_id
			WHERE a.game_id = ?1 AND b.game_id = g.id) * 2.0
		+ (SELECT COUNT(*) FROM game_themes a JOIN game_themes b ON a.theme_id = b.theme_id
			WHERE a.game_id = ?1 AND b.game_id = g.id) * 1.0
		+ (SELECT COUNT(*) FROM game_platforms a JOIN game_platforms b ON a.platform_id = b.platform_id
			WHERE a.game_id = ?1 AND b.game_id = g.id) * 0.5 AS similarity_score
	FROM games g
	WHERE g.id != ?1 AND g.cover_image_id IS NOT NULL
)
WHERE similarity_score > 0
ORDER BY similarity_score DESC, rating_count DESC
LIMIT ?2`

// Recommend returns games similar to the seed game, highest overlap first.
// An unknown seed simply yields an empty list.
func (s *Store) Recommend(ctx context.Context, gameID int64, limit int) ([]models.RecommendedGame, error) {
	rows, err := s.DB.QueryContext(ctx, recommendQuery, gameID, limit)
	if err != nil {
		return nil, &RecommendError{Err: err}
	}
	defer rows.Close()

	type scoredRow struct {
		gameRow
		score float64
	}
	var parsed []scoredRow
	for rows.Next() {
		var r scoredRow
		if err := rows.Scan(&r.id, &r.name, &r.slug, &r.summary, &r.coverImageID,
			&r.rating, &r.ratingCount, &r.firstReleaseDate, &r.genreIDs, &r.platformIDs, &r.score); err != nil {
			return nil, &RecommendError{Err: err}
		}
		parsed = append(parsed, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &RecommendError{Err: err}
	}
	if len(parsed) == 0 {
		return []models.RecommendedGame{}, nil
	}

	genres, platforms := s.lookupMaps(ctx)
	recs := make([]models.RecommendedGame, 0, len(parsed))
	for _, r := range parsed {
		recs = append(recs, models.RecommendedGame{
			Game:            s.toGame(r.gameRow, genres, platforms),
			SimilarityScore: r.score,
		})
	}
	return recs, nil
}
