package importer

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"gamehub/internal/games"
	"gamehub/internal/igdb"
	"gamehub/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var offsetRe = regexp.MustCompile(`offset (\d+);`)

func requestOffset(t *testing.T, body []byte) int {
	t.Helper()
	m := offsetRe.FindSubmatch(body)
	require.NotNil(t, m, "query body has no offset clause: %s", body)
	n, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	return n
}

const pageOne = `[
  {"id":101,"name":"Alpha Strike","slug":"alpha-strike","summary":"First entry.",
   "cover":{"image_id":"coA"},"rating":88.5,"rating_count":120,
   "first_release_date":1700000000,
   "genres":[{"id":5,"name":"Shooter","slug":"shooter"}],
   "themes":[{"id":20,"name":"Horror","slug":"horror"}],
   "game_modes":[{"id":1,"name":"Single player","slug":"single-player"}],
   "platforms":[{"id":48,"name":"PlayStation 4","slug":"ps4"}],
   "involved_companies":[
     {"company":{"id":9,"name":"Alpha Studio","slug":"alpha-studio"},"developer":true,"publisher":false},
     {"company":{"id":10,"name":"Big Publisher"},"developer":false,"publisher":true}
   ],
   "screenshots":[{"image_id":"scA1"},{"image_id":"scA2"}],
   "videos":[{"video_id":"vidA"}],
   "similar_games":[{"id":102}],
   "updated_at":1710000000},
  {"id":102,"name":"Beta Blast","slug":"beta-blast",
   "cover":{"image_id":"coB"},"rating":75.0,"rating_count":40,
   "genres":[{"id":5,"name":"Shooter","slug":"shooter"}],
   "platforms":[{"id":48,"name":"PlayStation 4","slug":"ps4"}],
   "similar_games":[{"id":101}]}
]`

func TestRunImportsAndClearsCheckpoint(t *testing.T) {
	db := newTestDB(t)
	tokenSrv := newTokenServer(t)

	var offsets []int
	var firstBody string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		offset := requestOffset(t, body)
		offsets = append(offsets, offset)
		if offset == 0 {
			firstBody = string(body)
			w.Write([]byte(pageOne))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")

	runner := NewRunner(igdb.NewClient("id", "secret", apiSrv.URL, tokenSrv.URL), db, checkpointPath)
	runner.BatchSize = 2
	runner.Target = 10
	runner.Delay = 0

	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, []int{0, 2}, offsets)

	// the crawl skips coverless and barely-reviewed titles server-side
	require.Contains(t, firstBody, "where cover != null & rating_count > 5;")
	require.Contains(t, firstBody, "sort rating_count desc;")

	// checkpoint is cleared after a completed run
	_, err := os.Stat(checkpointPath)
	require.True(t, os.IsNotExist(err))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&count))
	require.Equal(t, 2, count)

	var genreIDs string
	require.NoError(t, db.QueryRow(`SELECT genre_ids FROM games WHERE id = 101`).Scan(&genreIDs))
	require.JSONEq(t, `[5]`, genreIDs)

	var role string
	require.NoError(t, db.QueryRow(`SELECT role FROM game_companies WHERE game_id = 101 AND company_id = 9`).Scan(&role))
	require.Equal(t, "developer", role)
	require.NoError(t, db.QueryRow(`SELECT role FROM game_companies WHERE game_id = 101 AND company_id = 10`).Scan(&role))
	require.Equal(t, "publisher", role)

	// lookup tables are refreshed from the same payload
	var genreName string
	require.NoError(t, db.QueryRow(`SELECT name FROM genres WHERE id = 5`).Scan(&genreName))
	require.Equal(t, "Shooter", genreName)

	// the imported rows round-trip through the serving layer
	store := games.NewStore(db, nil)
	game := store.Detail(context.Background(), 101)
	require.NotNil(t, game)
	require.Equal(t, "Alpha Strike", game.Name)
	require.Equal(t, int64(1700000000), game.FirstReleaseDate)
	require.NotNil(t, game.Cover)
	require.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/coA.jpg", game.Cover.URL)
	require.Len(t, game.Genres, 1)
	require.Equal(t, "Shooter", game.Genres[0].Name)
	require.Len(t, game.Screenshots, 2)
	require.Len(t, game.Videos, 1)
	require.Len(t, game.SimilarGames, 1)
	require.Equal(t, "Beta Blast", game.SimilarGames[0].Name)
}

func TestRunAdvancesOffsetByBatchSize(t *testing.T) {
	db := newTestDB(t)
	tokenSrv := newTokenServer(t)

	var offsets []int
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		offset := requestOffset(t, body)
		offsets = append(offsets, offset)
		if offset == 0 {
			w.Write([]byte(pageOne))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")

	runner := NewRunner(igdb.NewClient("id", "secret", apiSrv.URL, tokenSrv.URL), db, checkpointPath)
	runner.BatchSize = 5
	runner.Target = 10
	runner.Delay = 0

	require.NoError(t, runner.Run(context.Background()))

	// the page came back short (2 of 5 rows) but the next request still
	// starts a full batch later
	require.Equal(t, []int{0, 5}, offsets)
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	db := newTestDB(t)
	tokenSrv := newTokenServer(t)

	var firstOffset = -1
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if firstOffset < 0 {
			firstOffset = requestOffset(t, body)
		}
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, SaveCheckpoint(checkpointPath, Checkpoint{Offset: 500, TotalImported: 500}))

	runner := NewRunner(igdb.NewClient("id", "secret", apiSrv.URL, tokenSrv.URL), db, checkpointPath)
	runner.Delay = 0

	require.NoError(t, runner.Run(context.Background()))
	require.Equal(t, 500, firstOffset)
}

func TestRunLeavesCheckpointOnFetchFailure(t *testing.T) {
	db := newTestDB(t)
	tokenSrv := newTokenServer(t)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer apiSrv.Close()

	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, SaveCheckpoint(checkpointPath, Checkpoint{Offset: 500, TotalImported: 500}))

	runner := NewRunner(igdb.NewClient("id", "secret", apiSrv.URL, tokenSrv.URL), db, checkpointPath)
	runner.Delay = 0

	err := runner.Run(context.Background())
	require.Error(t, err)

	// the checkpoint survives so the next run retries the same page
	cp, loadErr := LoadCheckpoint(checkpointPath)
	require.NoError(t, loadErr)
	require.Equal(t, Checkpoint{Offset: 500, TotalImported: 500}, cp)
}

func TestReimportReplacesMedia(t *testing.T) {
	db := newTestDB(t)
	tokenSrv := newTokenServer(t)

	payload := `[{"id":201,"name":"Replayed","cover":{"image_id":"coR"},"rating_count":10,
		"screenshots":[{"image_id":"old1"},{"image_id":"old2"}]}]`
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if requestOffset(t, body) == 0 {
			w.Write([]byte(payload))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer apiSrv.Close()

	run := func() {
		checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
		runner := NewRunner(igdb.NewClient("id", "secret", apiSrv.URL, tokenSrv.URL), db, checkpointPath)
		runner.Delay = 0
		require.NoError(t, runner.Run(context.Background()))
	}

	run()
	payload = `[{"id":201,"name":"Replayed","cover":{"image_id":"coR"},"rating_count":12,
		"screenshots":[{"image_id":"new1"}]}]`
	run()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM game_screenshots WHERE game_id = 201`).Scan(&count))
	require.Equal(t, 1, count)

	var imageID string
	require.NoError(t, db.QueryRow(`SELECT image_id FROM game_screenshots WHERE game_id = 201`).Scan(&imageID))
	require.Equal(t, "new1", imageID)

	var ratingCount int
	require.NoError(t, db.QueryRow(`SELECT rating_count FROM games WHERE id = 201`).Scan(&ratingCount))
	require.Equal(t, 12, ratingCount)
}

func TestCheckpointLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	// missing file reads as a zero checkpoint
	cp, err := LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, Checkpoint{}, cp)

	require.NoError(t, SaveCheckpoint(path, Checkpoint{Offset: 500, TotalImported: 500}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"offset":500,"totalImported":500}`, string(data))

	cp, err = LoadCheckpoint(path)
	require.NoError(t, err)
	require.Equal(t, Checkpoint{Offset: 500, TotalImported: 500}, cp)

	require.NoError(t, RemoveCheckpoint(path))
	require.NoError(t, RemoveCheckpoint(path)) // idempotent
}
