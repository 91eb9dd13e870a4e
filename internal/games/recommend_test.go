package games

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendScoring(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	// seed game: genre 5, theme 20
	insertGame(t, db, testGame{id: 1, name: "Seed", coverID: "co1", rating: 90, ratingCount: 100, genreIDs: []int64{5}})
	_, err := db.Exec(`INSERT INTO game_themes (game_id, theme_id) VALUES (1, 20)`)
	require.NoError(t, err)

	// shares genre and theme: 2.0 + 1.0
	insertGame(t, db, testGame{id: 2, name: "Close Match", coverID: "co2", rating: 85, ratingCount: 80, genreIDs: []int64{5}})
	_, err = db.Exec(`INSERT INTO game_themes (game_id, theme_id) VALUES (2, 20)`)
	require.NoError(t, err)

	// shares theme only: 1.0
	insertGame(t, db, testGame{id: 3, name: "Theme Cousin", coverID: "co3", rating: 85, ratingCount: 80})
	_, err = db.Exec(`INSERT INTO game_themes (game_id, theme_id) VALUES (3, 20)`)
	require.NoError(t, err)

	// shares platform only: 0.5
	insertGame(t, db, testGame{id: 4, name: "Platform Peer", coverID: "co4", rating: 85, ratingCount: 80, platformIDs: []int64{48}})
	_, err = db.Exec(`INSERT OR IGNORE INTO game_platforms (game_id, platform_id) VALUES (1, 48)`)
	require.NoError(t, err)

	// nothing shared: excluded entirely
	insertGame(t, db, testGame{id: 5, name: "Stranger", coverID: "co5", rating: 99, ratingCount: 999, genreIDs: []int64{31}})

	// overlaps but has no cover: excluded
	insertGame(t, db, testGame{id: 6, name: "Coverless Twin", rating: 85, ratingCount: 80, genreIDs: []int64{5}})

	recs, err := store.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	require.Equal(t, "Close Match", recs[0].Name)
	require.Equal(t, 3.0, recs[0].SimilarityScore)
	require.Equal(t, "Theme Cousin", recs[1].Name)
	require.Equal(t, 1.0, recs[1].SimilarityScore)
	require.Equal(t, "Platform Peer", recs[2].Name)
	require.Equal(t, 0.5, recs[2].SimilarityScore)
}

func TestRecommendUnknownSeed(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	insertGame(t, db, testGame{id: 1, name: "Lonely", coverID: "co1", rating: 90, ratingCount: 10, genreIDs: []int64{5}})

	recs, err := store.Recommend(context.Background(), 999, 10)
	require.NoError(t, err)
	require.Empty(t, recs)
	require.NotNil(t, recs)
}

func TestRecommendRespectsLimit(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, nil)

	insertGame(t, db, testGame{id: 1, name: "Seed", coverID: "co1", rating: 90, ratingCount: 10, genreIDs: []int64{5}})
	for i := int64(2); i <= 6; i++ {
		insertGame(t, db, testGame{id: i, name: "Peer", coverID: "co", rating: 80, ratingCount: int(i), genreIDs: []int64{5}})
	}

	recs, err := store.Recommend(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}
