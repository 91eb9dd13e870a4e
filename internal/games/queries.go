package games

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gamehub/pkg/models"
	"gamehub/pkg/utils"
)

func since(d time.Duration) string {
	return time.Now().Add(-d).UTC().Format(time.RFC3339)
}

const (
	sixMonths = 6 * 30 * 24 * time.Hour
	oneYear   = 365 * 24 * time.Hour
	twoYears  = 2 * 365 * 24 * time.Hour
)

func (s *Store) listQuery(ctx context.Context, op, query string, args ...any) ([]models.Game, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	parsed, err := scanGameRows(rows)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	genres, platforms := s.lookupMaps(ctx)
	return s.toGames(parsed, genres, platforms), nil
}

// PopularRecent lists well-reviewed games released in the last six months,
// busiest review counts first.
func (s *Store) PopularRecent(ctx context.Context, limit int) ([]models.Game, error) {
	return s.listQuery(ctx, "popular", `
		SELECT `+gameSelect+` FROM games
		WHERE first_release_date > ? AND rating_count > 5 AND cover_image_id IS NOT NULL
		ORDER BY rating_count DESC
		LIMIT ?`, since(sixMonths), limit)
}

// TopRated lists the highest-rated games from the last year.
func (s *Store) TopRated(ctx context.Context, limit int) ([]models.Game, error) {
	return s.listQuery(ctx, "top-rated", `
		SELECT `+gameSelect+` FROM games
		WHERE first_release_date > ? AND rating > 80 AND rating_count > 10
			AND cover_image_id IS NOT NULL
		ORDER BY rating DESC
		LIMIT ?`, since(oneYear), limit)
}

// ByGenre lists recent games carrying the given genre, best rated first.
func (s *Store) ByGenre(ctx context.Context, genreID int64, limit int) ([]models.Game, error) {
	return s.listQuery(ctx, "genre", `
		SELECT `+gameSelect+` FROM games
		WHERE EXISTS (SELECT 1 FROM game_genres gg WHERE gg.game_id = games.id AND gg.genre_id = ?)
			AND first_release_date > ? AND rating_count > 3 AND cover_image_id IS NOT NULL
		ORDER BY rating DESC
		LIMIT ?`, genreID, since(twoYears), limit)
}

// Filtered lists games matching every requested genre and platform id.
func (s *Store) Filtered(ctx context.Context, genreIDs, platformIDs []int64, limit int) ([]models.Game, error) {
	conds := []string{"rating_count > 1", "cover_image_id IS NOT NULL"}
	args := []any{}
	for _, id := range genreIDs {
		conds = append(conds, "EXISTS (SELECT 1 FROM game_genres gg WHERE gg.game_id = games.id AND gg.genre_id = ?)")
		args = append(args, id)
	}
	for _, id := range platformIDs {
		conds = append(conds, "EXISTS (SELECT 1 FROM game_platforms gp WHERE gp.game_id = games.id AND gp.platform_id = ?)")
		args = append(args, id)
	}
	args = append(args, limit)
	return s.listQuery(ctx, "filter", fmt.Sprintf(`
		SELECT %s FROM games
		WHERE %s
		ORDER BY rating DESC
		LIMIT ?`, gameSelect, strings.Join(conds, " AND ")), args...)
}

// RandomCurated shuffles a quality-gated pool and returns the first limit
// entries, so the landing page changes between visits without surfacing
// shovelware.
func (s *Store) RandomCurated(ctx context.Context, limit int) ([]models.Game, error) {
	pool := limit * 10
	if pool > 200 {
		pool = 200
	}
	games, err := s.listQuery(ctx, "random", `
		SELECT `+gameSelect+` FROM games
		WHERE rating > 70 AND rating_count > 5 AND cover_image_id IS NOT NULL
		ORDER BY rating DESC
		LIMIT ?`, pool)
	if err != nil {
		return nil, err
	}
	games = utils.Shuffle(games)
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

// Detail loads one game with screenshots, videos and similar titles. Any
// miss, a bad id or a query failure alike, comes back as nil.
func (s *Store) Detail(ctx context.Context, id int64) *models.Game {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+gameSelect+` FROM games WHERE id = ?`, id)
	var r gameRow
	if err := row.Scan(&r.id, &r.name, &r.slug, &r.summary, &r.coverImageID,
		&r.rating, &r.ratingCount, &r.firstReleaseDate, &r.genreIDs, &r.platformIDs); err != nil {
		return nil
	}

	var (
		wg          sync.WaitGroup
		screenshots []string
		videoIDs    []string
		similarIDs  []int64
		genres      map[int64]string
		platforms   map[int64]string
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		screenshots = s.stringColumn(ctx, "SELECT image_id FROM game_screenshots WHERE game_id = ? ORDER BY rowid", id)
	}()
	go func() {
		defer wg.Done()
		videoIDs = s.stringColumn(ctx, "SELECT video_id FROM game_videos WHERE game_id = ? ORDER BY rowid", id)
	}()
	go func() {
		defer wg.Done()
		similarIDs = s.int64Column(ctx, "SELECT similar_game_id FROM game_similar WHERE game_id = ?", id)
	}()
	go func() {
		defer wg.Done()
		genres, platforms = s.lookupMaps(ctx)
	}()
	wg.Wait()

	game := s.toGame(r, genres, platforms)
	for _, imageID := range screenshots {
		game.Screenshots = append(game.Screenshots, models.Screenshot{URL: screenshotURL(imageID)})
	}
	for _, vid := range videoIDs {
		game.Videos = append(game.Videos, models.Video{VideoID: vid})
	}
	game.SimilarGames = s.similarGames(ctx, similarIDs, genres, platforms)
	return &game
}

// similarGames resolves the stored similar-game ids, keeping only titles
// with cover art and capping the list at 20.
func (s *Store) similarGames(ctx context.Context, ids []int64, genres, platforms map[int64]string) []models.Game {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM games
		WHERE id IN (%s) AND cover_image_id IS NOT NULL
		ORDER BY rating_count DESC
		LIMIT 20`, gameSelect, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil
	}
	parsed, err := scanGameRows(rows)
	if err != nil {
		return nil
	}
	return s.toGames(parsed, genres, platforms)
}

func (s *Store) stringColumn(ctx context.Context, query string, args ...any) []string {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}

func (s *Store) int64Column(ctx context.Context, query string, args ...any) []int64 {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}
