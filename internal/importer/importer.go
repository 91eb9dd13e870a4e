package importer

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gamehub/internal/igdb"
)

const (
	defaultBatchSize = 500
	defaultTarget    = 5000
	defaultDelay     = 260 * time.Millisecond
)

// importFields is the wide projection the importer pulls per game. Nested
// references come back expanded so lookup tables can be refreshed from the
// same response. similar_games stays id-only.
const importFields = `fields name, slug, summary, storyline, cover.image_id, rating, rating_count,
  aggregated_rating, total_rating, first_release_date, category, status, hypes,
  genres.id, genres.name, genres.slug,
  themes.id, themes.name, themes.slug,
  game_modes.id, game_modes.name, game_modes.slug,
  platforms.id, platforms.name, platforms.slug,
  player_perspectives.id, player_perspectives.name, player_perspectives.slug,
  keywords.id, keywords.name, keywords.slug,
  involved_companies.company.id, involved_companies.company.name, involved_companies.company.slug,
  involved_companies.developer, involved_companies.publisher,
  screenshots.image_id, videos.video_id, similar_games.id, updated_at;`

// Runner walks the remote catalog in fixed-size pages, most reviewed games
// first, and upserts every page into the local database.
type Runner struct {
	Client *igdb.Client
	DB     *sql.DB

	BatchSize      int
	Target         int
	Delay          time.Duration
	CheckpointPath string
}

func NewRunner(client *igdb.Client, db *sql.DB, checkpointPath string) *Runner {
	return &Runner{
		Client:         client,
		DB:             db,
		BatchSize:      defaultBatchSize,
		Target:         defaultTarget,
		Delay:          defaultDelay,
		CheckpointPath: checkpointPath,
	}
}

func (r *Runner) fetchBatch(ctx context.Context, offset int) ([]igdb.Game, error) {
	body := fmt.Sprintf(`%s
where cover != null & rating_count > 5;
sort rating_count desc;
limit %d;
offset %d;`, importFields, r.BatchSize, offset)

	var games []igdb.Game
	if err := r.Client.Query(ctx, "games", body, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Run resumes from the checkpoint and imports pages until the target count
// is reached or the catalog runs dry. A fetch failure aborts and leaves
// the checkpoint in place; the next run picks up from the same offset.
func (r *Runner) Run(ctx context.Context) error {
	cp, err := LoadCheckpoint(r.CheckpointPath)
	if err != nil {
		return err
	}
	if cp.TotalImported > 0 {
		log.Printf("[importer] resuming at offset %d (%d imported so far)", cp.Offset, cp.TotalImported)
	}

	// pacing lives in the client so retried calls wait too
	r.Client.SetRequestDelay(r.Delay)

	for cp.TotalImported < r.Target {
		games, err := r.fetchBatch(ctx, cp.Offset)
		if err != nil {
			return fmt.Errorf("fetch batch at offset %d: %w", cp.Offset, err)
		}
		if len(games) == 0 {
			log.Printf("[importer] catalog exhausted at offset %d", cp.Offset)
			break
		}

		if err := r.processBatch(ctx, games); err != nil {
			return fmt.Errorf("process batch at offset %d: %w", cp.Offset, err)
		}

		// the offset advances by the page size even when the API
		// returns fewer rows
		cp.Offset += r.BatchSize
		cp.TotalImported += len(games)
		if err := SaveCheckpoint(r.CheckpointPath, cp); err != nil {
			return err
		}
		log.Printf("[importer] imported %d/%d games", cp.TotalImported, r.Target)
	}

	if err := RemoveCheckpoint(r.CheckpointPath); err != nil {
		return err
	}
	log.Printf("[importer] done: %d games imported", cp.TotalImported)
	return nil
}
