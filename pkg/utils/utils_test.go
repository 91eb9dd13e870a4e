package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShuffle(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	original := append([]int(nil), in...)

	out := Shuffle(in)
	require.ElementsMatch(t, original, out)
	require.Equal(t, original, in, "input must not be mutated")

	require.Empty(t, Shuffle([]int{}))
}

func TestPickRandom(t *testing.T) {
	in := []string{"a", "b", "c"}

	picked := PickRandom(in, 2)
	require.Len(t, picked, 2)
	require.Subset(t, in, picked)

	require.Len(t, PickRandom(in, 10), 3)
}

func TestCatalogImageURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		size string
		want string
	}{
		{
			"protocol-relative thumb",
			"//images.igdb.com/igdb/image/upload/t_thumb/co2lbd.jpg",
			"t_cover_big",
			"https://images.igdb.com/igdb/image/upload/t_cover_big/co2lbd.jpg",
		},
		{
			"absolute url resized",
			"https://images.igdb.com/igdb/image/upload/t_thumb/sc1.jpg",
			"t_screenshot_big",
			"https://images.igdb.com/igdb/image/upload/t_screenshot_big/sc1.jpg",
		},
		{
			"no size token passes through",
			"https://example.com/plain.jpg",
			"t_cover_big",
			"https://example.com/plain.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CatalogImageURL(tt.url, tt.size))
		})
	}
}

func TestLoadAuthConfigDefaults(t *testing.T) {
	t.Setenv("GAMEHUB_JWT_SECRET", "")
	t.Setenv("GAMEHUB_JWT_ISSUER", "")
	t.Setenv("GAMEHUB_JWT_TTL_HOURS", "")

	cfg := LoadAuthConfig()
	require.NotEmpty(t, cfg.JWTSecret)
	require.Equal(t, "gamehub", cfg.JWTIssuer)
	require.Equal(t, 24*time.Hour, cfg.JWTDuration)
}

func TestLoadAuthConfigOverrides(t *testing.T) {
	t.Setenv("GAMEHUB_JWT_SECRET", "super-secret")
	t.Setenv("GAMEHUB_JWT_ISSUER", "gamehub-test")
	t.Setenv("GAMEHUB_JWT_TTL_HOURS", "2")

	cfg := LoadAuthConfig()
	require.Equal(t, "super-secret", cfg.JWTSecret)
	require.Equal(t, "gamehub-test", cfg.JWTIssuer)
	require.Equal(t, 2*time.Hour, cfg.JWTDuration)
}
