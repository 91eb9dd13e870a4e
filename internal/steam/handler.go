package steam

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search) // GET /storefront/search
}

func (h *Handler) search(c *gin.Context) {
	params := SearchParams{
		Tags:  strings.TrimSpace(c.Query("tags")),
		Count: parseInt(c.Query("count"), 50),
		Start: parseInt(c.Query("start"), 0),
	}
	if params.Count < 1 || params.Count > 100 {
		params.Count = 50
	}
	if params.Start < 0 {
		params.Start = 0
	}

	result, err := h.Client.Search(c.Request.Context(), params)
	if err != nil {
		log.Printf("[steam] search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "storefront search failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
