package models

// Game is the normalized, internal form of a game entry used by every
// data source (catalog API, local store, importer).
//
// All external sources are mapped into this structure first; the HTTP
// layer serves it as-is. Optional fields stay absent when the source
// has no value for them — they are never filled with defaults.
type Game struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Summary          string       `json:"summary,omitempty"`
	Cover            *Cover       `json:"cover,omitempty"`
	Genres           []NamedRef   `json:"genres,omitempty"`
	Platforms        []NamedRef   `json:"platforms,omitempty"`
	FirstReleaseDate int64        `json:"first_release_date,omitempty"` // unix seconds
	Rating           float64      `json:"rating,omitempty"`             // 0-100
	Screenshots      []Screenshot `json:"screenshots,omitempty"`
	Videos           []Video      `json:"videos,omitempty"`
	SimilarGames     []Game       `json:"similar_games,omitempty"` // depth 1 only
}

// NamedRef is an id/name pair for genres and platforms. Name is always
// present: unknown ids get a synthesized placeholder instead of failing.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Cover struct {
	URL string `json:"url"`
}

type Screenshot struct {
	URL string `json:"url"`
}

type Video struct {
	VideoID string `json:"video_id"`
}

// RecommendedGame is a Game plus the similarity score computed by the
// store's recommendation query.
type RecommendedGame struct {
	Game
	SimilarityScore float64 `json:"similarity_score"`
}
