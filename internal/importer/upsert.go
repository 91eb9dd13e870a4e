package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"gamehub/internal/igdb"
)

// processBatch writes one fetched page inside a single transaction, in
// dependency order: lookup tables, companies, games, join rows, then the
// per-game media and similar-game lists. A failed table is logged and
// skipped so one bad record cannot sink the whole batch.
func (r *Runner) processBatch(ctx context.Context, games []igdb.Game) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsertRefs(tx, "genres", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.Genres }))
	upsertRefs(tx, "themes", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.Themes }))
	upsertRefs(tx, "game_modes", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.GameModes }))
	upsertRefs(tx, "platforms", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.Platforms }))
	upsertRefs(tx, "player_perspectives", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.PlayerPerspectives }))
	upsertRefs(tx, "keywords", collectRefs(games, func(g igdb.Game) []igdb.Ref { return g.Keywords }))
	upsertCompanies(tx, games)
	upsertGames(tx, games)
	upsertJoins(tx, games)
	replaceMedia(tx, games)

	return tx.Commit()
}

func collectRefs(games []igdb.Game, pick func(igdb.Game) []igdb.Ref) []igdb.Ref {
	seen := make(map[int64]bool)
	var out []igdb.Ref
	for _, g := range games {
		for _, ref := range pick(g) {
			if ref.ID == 0 || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			out = append(out, ref)
		}
	}
	return out
}

func upsertRefs(tx *sql.Tx, table string, refs []igdb.Ref) {
	if len(refs) == 0 {
		return
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + table + ` (id, name, slug) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, slug = excluded.slug`)
	if err != nil {
		log.Printf("[importer] %s upsert failed: %v", table, err)
		return
	}
	defer stmt.Close()
	for _, ref := range refs {
		if _, err := stmt.Exec(ref.ID, ref.Name, ref.Slug); err != nil {
			log.Printf("[importer] %s upsert failed for id %d: %v", table, ref.ID, err)
			return
		}
	}
}

func upsertCompanies(tx *sql.Tx, games []igdb.Game) {
	seen := make(map[int64]bool)
	stmt, err := tx.Prepare(`INSERT INTO companies (id, name, slug) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, slug = excluded.slug`)
	if err != nil {
		log.Printf("[importer] companies upsert failed: %v", err)
		return
	}
	defer stmt.Close()
	for _, g := range games {
		for _, ic := range g.InvolvedCompanies {
			co := ic.Company
			if co.ID == 0 || seen[co.ID] {
				continue
			}
			seen[co.ID] = true
			if _, err := stmt.Exec(co.ID, co.Name, nullStr(co.Slug)); err != nil {
				log.Printf("[importer] companies upsert failed for id %d: %v", co.ID, err)
				return
			}
		}
	}
}

func upsertGames(tx *sql.Tx, games []igdb.Game) {
	stmt, err := tx.Prepare(`INSERT INTO games (
		id, name, slug, summary, storyline, cover_image_id, rating, rating_count,
		aggregated_rating, total_rating, first_release_date, category, status, hypes,
		genre_ids, theme_ids, mode_ids, platform_ids, perspective_ids, keyword_ids,
		developer_ids, catalog_updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, slug = excluded.slug, summary = excluded.summary,
		storyline = excluded.storyline, cover_image_id = excluded.cover_image_id,
		rating = excluded.rating, rating_count = excluded.rating_count,
		aggregated_rating = excluded.aggregated_rating, total_rating = excluded.total_rating,
		first_release_date = excluded.first_release_date, category = excluded.category,
		status = excluded.status, hypes = excluded.hypes,
		genre_ids = excluded.genre_ids, theme_ids = excluded.theme_ids,
		mode_ids = excluded.mode_ids, platform_ids = excluded.platform_ids,
		perspective_ids = excluded.perspective_ids, keyword_ids = excluded.keyword_ids,
		developer_ids = excluded.developer_ids, catalog_updated_at = excluded.catalog_updated_at`)
	if err != nil {
		log.Printf("[importer] games upsert failed: %v", err)
		return
	}
	defer stmt.Close()
	for _, g := range games {
		var coverID any
		if g.Cover != nil && g.Cover.ImageID != "" {
			coverID = g.Cover.ImageID
		}
		_, err := stmt.Exec(
			g.ID, g.Name, nullStr(g.Slug), nullStr(g.Summary), nullStr(g.Storyline), coverID,
			nullFloat(g.Rating), g.RatingCount, nullFloat(g.AggregatedRating), nullFloat(g.TotalRating),
			nullUnixRFC3339(g.FirstReleaseDate), g.Category, nullInt(g.Status), g.Hypes,
			refIDs(g.Genres), refIDs(g.Themes), refIDs(g.GameModes), refIDs(g.Platforms),
			refIDs(g.PlayerPerspectives), refIDs(g.Keywords), idJSON(developerIDs(g)),
			nullUnixRFC3339(g.UpdatedAt),
		)
		if err != nil {
			log.Printf("[importer] games upsert failed for id %d: %v", g.ID, err)
			return
		}
	}
}

func upsertJoins(tx *sql.Tx, games []igdb.Game) {
	join := func(table, column string, ids func(igdb.Game) []int64) {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO ` + table + ` (game_id, ` + column + `) VALUES (?, ?)`)
		if err != nil {
			log.Printf("[importer] %s insert failed: %v", table, err)
			return
		}
		defer stmt.Close()
		for _, g := range games {
			for _, id := range ids(g) {
				if _, err := stmt.Exec(g.ID, id); err != nil {
					log.Printf("[importer] %s insert failed for game %d: %v", table, g.ID, err)
					return
				}
			}
		}
	}

	join("game_genres", "genre_id", func(g igdb.Game) []int64 { return refIDList(g.Genres) })
	join("game_themes", "theme_id", func(g igdb.Game) []int64 { return refIDList(g.Themes) })
	join("game_game_modes", "mode_id", func(g igdb.Game) []int64 { return refIDList(g.GameModes) })
	join("game_platforms", "platform_id", func(g igdb.Game) []int64 { return refIDList(g.Platforms) })
	join("game_perspectives", "perspective_id", func(g igdb.Game) []int64 { return refIDList(g.PlayerPerspectives) })
	join("game_keywords", "keyword_id", func(g igdb.Game) []int64 { return refIDList(g.Keywords) })

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO game_companies (game_id, company_id, role) VALUES (?, ?, ?)`)
	if err != nil {
		log.Printf("[importer] game_companies insert failed: %v", err)
		return
	}
	defer stmt.Close()
	for _, g := range games {
		for _, ic := range g.InvolvedCompanies {
			if ic.Company.ID == 0 {
				continue
			}
			roles := []string{}
			if ic.Developer {
				roles = append(roles, "developer")
			}
			if ic.Publisher {
				roles = append(roles, "publisher")
			}
			for _, role := range roles {
				if _, err := stmt.Exec(g.ID, ic.Company.ID, role); err != nil {
					log.Printf("[importer] game_companies insert failed for game %d: %v", g.ID, err)
					return
				}
			}
		}
	}
}

// replaceMedia rewrites screenshots, videos and similar-game lists with a
// delete-then-insert so stale rows from earlier imports disappear.
func replaceMedia(tx *sql.Tx, games []igdb.Game) {
	for _, g := range games {
		if _, err := tx.Exec(`DELETE FROM game_screenshots WHERE game_id = ?`, g.ID); err != nil {
			log.Printf("[importer] game_screenshots delete failed for game %d: %v", g.ID, err)
		} else {
			for _, shot := range g.Screenshots {
				if shot.ImageID == "" {
					continue
				}
				if _, err := tx.Exec(`INSERT INTO game_screenshots (game_id, image_id) VALUES (?, ?)`, g.ID, shot.ImageID); err != nil {
					log.Printf("[importer] game_screenshots insert failed for game %d: %v", g.ID, err)
					break
				}
			}
		}

		if _, err := tx.Exec(`DELETE FROM game_videos WHERE game_id = ?`, g.ID); err != nil {
			log.Printf("[importer] game_videos delete failed for game %d: %v", g.ID, err)
		} else {
			for _, v := range g.Videos {
				if v.VideoID == "" {
					continue
				}
				if _, err := tx.Exec(`INSERT INTO game_videos (game_id, video_id) VALUES (?, ?)`, g.ID, v.VideoID); err != nil {
					log.Printf("[importer] game_videos insert failed for game %d: %v", g.ID, err)
					break
				}
			}
		}

		if _, err := tx.Exec(`DELETE FROM game_similar WHERE game_id = ?`, g.ID); err != nil {
			log.Printf("[importer] game_similar delete failed for game %d: %v", g.ID, err)
			continue
		}
		for _, sim := range g.SimilarGames {
			if sim.ID == 0 {
				continue
			}
			if _, err := tx.Exec(`INSERT OR IGNORE INTO game_similar (game_id, similar_game_id) VALUES (?, ?)`, g.ID, sim.ID); err != nil {
				log.Printf("[importer] game_similar insert failed for game %d: %v", g.ID, err)
				break
			}
		}
	}
}

func refIDList(refs []igdb.Ref) []int64 {
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		if r.ID != 0 {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func refIDs(refs []igdb.Ref) string {
	return idJSON(refIDList(refs))
}

func developerIDs(g igdb.Game) []int64 {
	var ids []int64
	for _, ic := range g.InvolvedCompanies {
		if ic.Developer && ic.Company.ID != 0 {
			ids = append(ids, ic.Company.ID)
		}
	}
	return ids
}

func idJSON(ids []int64) string {
	if len(ids) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullUnixRFC3339(v int64) any {
	if v == 0 {
		return nil
	}
	return time.Unix(v, 0).UTC().Format(time.RFC3339)
}
