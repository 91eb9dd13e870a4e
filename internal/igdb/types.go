package igdb

import (
	"gamehub/pkg/models"
	"gamehub/pkg/utils"
)

// Raw wire shapes of the catalog API. They never leave this package
// boundary except through Normalize; everything downstream works on
// models.Game.

type Image struct {
	URL     string `json:"url"`
	ImageID string `json:"image_id"`
}

type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type InvolvedCompany struct {
	Company   Company `json:"company"`
	Developer bool    `json:"developer"`
	Publisher bool    `json:"publisher"`
}

type VideoRef struct {
	VideoID string `json:"video_id"`
}

type Game struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Summary            string            `json:"summary"`
	Storyline          string            `json:"storyline"`
	Cover              *Image            `json:"cover"`
	Rating             float64           `json:"rating"`
	RatingCount        int64             `json:"rating_count"`
	AggregatedRating   float64           `json:"aggregated_rating"`
	TotalRating        float64           `json:"total_rating"`
	FirstReleaseDate   int64             `json:"first_release_date"`
	Category           int64             `json:"category"`
	Status             int64             `json:"status"`
	Hypes              int64             `json:"hypes"`
	Genres             []Ref             `json:"genres"`
	Themes             []Ref             `json:"themes"`
	GameModes          []Ref             `json:"game_modes"`
	Platforms          []Ref             `json:"platforms"`
	PlayerPerspectives []Ref             `json:"player_perspectives"`
	InvolvedCompanies  []InvolvedCompany `json:"involved_companies"`
	Keywords           []Ref             `json:"keywords"`
	Screenshots        []Image           `json:"screenshots"`
	Videos             []VideoRef        `json:"videos"`
	SimilarGames       []Game            `json:"similar_games"`
	UpdatedAt          int64             `json:"updated_at"`
}

// Normalize maps the raw catalog shape into the unified game record.
// Image URLs are rewritten to sized derivatives; similar games stay
// one level deep.
func (g Game) Normalize() models.Game {
	return g.normalize(true)
}

func (g Game) normalize(withSimilar bool) models.Game {
	out := models.Game{
		ID:               g.ID,
		Name:             g.Name,
		Summary:          g.Summary,
		Rating:           g.Rating,
		FirstReleaseDate: g.FirstReleaseDate,
	}

	if g.Cover != nil && g.Cover.URL != "" {
		out.Cover = &models.Cover{URL: utils.CatalogImageURL(g.Cover.URL, "t_cover_big")}
	}

	if len(g.Genres) > 0 {
		out.Genres = make([]models.NamedRef, 0, len(g.Genres))
		for _, genre := range g.Genres {
			out.Genres = append(out.Genres, models.NamedRef{ID: genre.ID, Name: genre.Name})
		}
	}
	if len(g.Platforms) > 0 {
		out.Platforms = make([]models.NamedRef, 0, len(g.Platforms))
		for _, platform := range g.Platforms {
			out.Platforms = append(out.Platforms, models.NamedRef{ID: platform.ID, Name: platform.Name})
		}
	}

	if len(g.Screenshots) > 0 {
		out.Screenshots = make([]models.Screenshot, 0, len(g.Screenshots))
		for _, shot := range g.Screenshots {
			if shot.URL == "" {
				continue
			}
			out.Screenshots = append(out.Screenshots, models.Screenshot{
				URL: utils.CatalogImageURL(shot.URL, "t_screenshot_big"),
			})
		}
	}
	if len(g.Videos) > 0 {
		out.Videos = make([]models.Video, 0, len(g.Videos))
		for _, v := range g.Videos {
			out.Videos = append(out.Videos, models.Video{VideoID: v.VideoID})
		}
	}

	if withSimilar && len(g.SimilarGames) > 0 {
		out.SimilarGames = make([]models.Game, 0, len(g.SimilarGames))
		for _, similar := range g.SimilarGames {
			out.SimilarGames = append(out.SimilarGames, similar.normalize(false))
		}
	}

	return out
}
