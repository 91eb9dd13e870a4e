package igdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gamehub/pkg/models"
)

// Field projection shared by the browse/search helpers. The importer
// uses its own wider projection (see internal/importer).
const gameFields = `fields name, cover.url, genres.id, genres.name, platforms.id, platforms.name,
  first_release_date, rating, summary, screenshots.url,
  videos.video_id, similar_games.name, similar_games.cover.url,
  similar_games.id, similar_games.rating, similar_games.genres.name,
  similar_games.platforms.name, similar_games.first_release_date;`

const (
	sixMonths = 6 * 30 * 24 * time.Hour
	oneYear   = 365 * 24 * time.Hour
	twoYears  = 2 * 365 * 24 * time.Hour
)

func (c *Client) queryGames(ctx context.Context, body string) ([]Game, error) {
	var raw []Game
	if err := c.Query(ctx, "games", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PopularRecent lists the most-reviewed games released in the last six
// months.
func (c *Client) PopularRecent(ctx context.Context, limit int) ([]Game, error) {
	now := time.Now().Unix()
	since := now - int64(sixMonths.Seconds())

	return c.queryGames(ctx, fmt.Sprintf(`%s
where first_release_date > %d & first_release_date < %d & rating_count > 5 & cover != null;
sort rating_count desc;
limit %d;`, gameFields, since, now, limit))
}

// TopRated lists highly rated games from the last year.
func (c *Client) TopRated(ctx context.Context, limit int) ([]Game, error) {
	now := time.Now().Unix()
	since := now - int64(oneYear.Seconds())

	return c.queryGames(ctx, fmt.Sprintf(`%s
where first_release_date > %d & first_release_date < %d & rating > 80 & rating_count > 10 & cover != null;
sort rating desc;
limit %d;`, gameFields, since, now, limit))
}

// ByGenre lists recent games in one genre.
func (c *Client) ByGenre(ctx context.Context, genreID int64, limit int) ([]Game, error) {
	now := time.Now().Unix()
	since := now - int64(twoYears.Seconds())

	return c.queryGames(ctx, fmt.Sprintf(`%s
where genres = (%d) & first_release_date > %d & first_release_date < %d & rating_count > 3 & cover != null;
sort rating desc;
limit %d;`, gameFields, genreID, since, now, limit))
}

// Detail fetches one game by id, nil when the catalog has no row.
func (c *Client) Detail(ctx context.Context, gameID int64) (*Game, error) {
	results, err := c.queryGames(ctx, fmt.Sprintf(`%s
where id = %d;
limit 1;`, gameFields, gameID))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Filtered queries by genre/platform id sets. An empty id list omits
// its clause entirely — filtering by an empty set would match nothing.
// The cover and rating_count floors are always present.
func (c *Client) Filtered(ctx context.Context, genreIDs, platformIDs []int64, limit int) ([]Game, error) {
	conditions := []string{"cover != null", "rating_count > 1"}

	if len(genreIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("genres = (%s)", joinIDs(genreIDs)))
	}
	if len(platformIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("platforms = (%s)", joinIDs(platformIDs)))
	}

	return c.queryGames(ctx, fmt.Sprintf(`%s
where %s;
sort rating desc;
limit %d;`, gameFields, strings.Join(conditions, " & "), limit))
}

// SearchRaw runs the API's free-text search. Embedded quotes are
// escaped before interpolation into the query body.
func (c *Client) SearchRaw(ctx context.Context, query string, limit int) ([]Game, error) {
	escaped := strings.ReplaceAll(query, `"`, `\"`)

	return c.queryGames(ctx, fmt.Sprintf(`%s
search "%s";
where cover != null;
limit %d;`, gameFields, escaped, limit))
}

// Search is SearchRaw mapped to the normalized game shape. It is the
// method the unified data-access layer uses as its remote fallback.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Game, error) {
	raw, err := c.SearchRaw(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	games := make([]models.Game, 0, len(raw))
	for _, g := range raw {
		games = append(games, g.Normalize())
	}
	return games, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
