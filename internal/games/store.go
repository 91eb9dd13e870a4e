package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gamehub/pkg/models"
	"gamehub/pkg/utils"
)

// RemoteSearcher is the remote catalog fallback used when local search
// comes back thin. A nil searcher means the store runs local-only.
type RemoteSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Game, error)
}

// StoreError wraps a failed relational query with the operation that ran it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("games: %s query failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the unified catalog layer: all reads go through the local
// database, with the remote searcher as a last resort for search only.
type Store struct {
	DB     *sql.DB
	Remote RemoteSearcher

	mu            sync.Mutex
	genreNames    map[int64]string
	platformNames map[int64]string
}

func NewStore(db *sql.DB, remote RemoteSearcher) *Store {
	return &Store{DB: db, Remote: remote}
}

// gameSelect is the projection every list query shares.
const gameSelect = `id, name, slug, summary, cover_image_id, rating, rating_count,
	first_release_date, genre_ids, platform_ids`

type gameRow struct {
	id               int64
	name             string
	slug             sql.NullString
	summary          sql.NullString
	coverImageID     sql.NullString
	rating           sql.NullFloat64
	ratingCount      int64
	firstReleaseDate sql.NullString
	genreIDs         sql.NullString
	platformIDs      sql.NullString
}

func scanGameRows(rows *sql.Rows) ([]gameRow, error) {
	defer rows.Close()
	var out []gameRow
	for rows.Next() {
		var r gameRow
		if err := rows.Scan(&r.id, &r.name, &r.slug, &r.summary, &r.coverImageID,
			&r.rating, &r.ratingCount, &r.firstReleaseDate, &r.genreIDs, &r.platformIDs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// coverURL builds the display-sized cover for a stored image id.
func coverURL(imageID string) string {
	return utils.CatalogImageURL("//images.igdb.com/igdb/image/upload/t_thumb/"+imageID+".jpg", "t_cover_big")
}

func screenshotURL(imageID string) string {
	return utils.CatalogImageURL("//images.igdb.com/igdb/image/upload/t_thumb/"+imageID+".jpg", "t_screenshot_big")
}

func decodeIDs(raw sql.NullString) []int64 {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
		return nil
	}
	return ids
}

// toGame maps a stored row onto the API shape, resolving genre and
// platform ids through the cached lookup maps.
func (s *Store) toGame(r gameRow, genres, platforms map[int64]string) models.Game {
	g := models.Game{
		ID:   r.id,
		Name: r.name,
	}
	if r.summary.Valid {
		g.Summary = r.summary.String
	}
	if r.rating.Valid {
		g.Rating = r.rating.Float64
	}
	if r.coverImageID.Valid && r.coverImageID.String != "" {
		g.Cover = &models.Cover{URL: coverURL(r.coverImageID.String)}
	}
	if r.firstReleaseDate.Valid {
		if t, err := time.Parse(time.RFC3339, r.firstReleaseDate.String); err == nil {
			g.FirstReleaseDate = t.Unix()
		}
	}
	for _, id := range decodeIDs(r.genreIDs) {
		g.Genres = append(g.Genres, models.NamedRef{ID: id, Name: lookupName(genres, id, "Genre")})
	}
	for _, id := range decodeIDs(r.platformIDs) {
		g.Platforms = append(g.Platforms, models.NamedRef{ID: id, Name: lookupName(platforms, id, "Platform")})
	}
	return g
}

func (s *Store) toGames(rows []gameRow, genres, platforms map[int64]string) []models.Game {
	games := make([]models.Game, 0, len(rows))
	for _, r := range rows {
		games = append(games, s.toGame(r, genres, platforms))
	}
	return games
}
