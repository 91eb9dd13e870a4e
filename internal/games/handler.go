package games

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/search", h.search)
	rg.GET("/recommend", h.recommend)
	rg.GET("/:id", h.detail)
}

func (h *Handler) list(c *gin.Context) {
	section := c.DefaultQuery("section", "popular")
	limit := clampLimit(c.Query("limit"), 20)

	var (
		games any
		err   error
	)
	switch section {
	case "popular":
		games, err = h.Store.PopularRecent(c.Request.Context(), limit)
	case "top-rated":
		games, err = h.Store.TopRated(c.Request.Context(), limit)
	case "genre":
		genreID, ok := parseID(c.Query("genreId"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "genreId is required for the genre section"})
			return
		}
		games, err = h.Store.ByGenre(c.Request.Context(), genreID, limit)
	case "filter":
		games, err = h.Store.Filtered(c.Request.Context(),
			parseIDList(c.Query("genres")), parseIDList(c.Query("platforms")), limit)
	case "random":
		games, err = h.Store.RandomCurated(c.Request.Context(), limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown section: " + section})
		return
	}
	if err != nil {
		log.Printf("[games] %s section failed: %v", section, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	limit := clampLimit(c.Query("limit"), 20)

	games, err := h.Store.Search(c.Request.Context(), query, limit)
	if err != nil {
		log.Printf("[games] search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *Handler) recommend(c *gin.Context) {
	gameID, ok := parseID(c.Query("gameId"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId is required"})
		return
	}
	limit := clampLimit(c.Query("limit"), 10)

	recs, err := h.Store.Recommend(c.Request.Context(), gameID, limit)
	if err != nil {
		log.Printf("[games] recommend failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": recs})
}

func (h *Handler) detail(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	game := h.Store.Detail(c.Request.Context(), id)
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		if id, ok := parseID(part); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func clampLimit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}
