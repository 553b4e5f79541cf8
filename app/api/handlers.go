package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Br0ck25/kynews-sub000/app/cache"
	"github.com/Br0ck25/kynews-sub000/app/database"
	"github.com/Br0ck25/kynews-sub000/app/serving"
	"github.com/Br0ck25/kynews-sub000/app/tasks"
)

const (
	defaultWindowHours = 72
	maxWindowHours     = 24 * 30

	// overFetchFactor guarantees enough survivors after the dedup walk
	overFetchFactor = 3
)

type Handler struct {
	feedRepo    database.FeedRepository
	itemRepo    database.ItemRepository
	runRepo     database.RunRepository
	runner      tasks.IngestRunner
	resultCache *cache.Cache
	state       string
	pageSize    int
}

func NewHandler(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	runRepo database.RunRepository, runner tasks.IngestRunner,
	resultCache *cache.Cache, state string, pageSize int) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		itemRepo:    itemRepo,
		runRepo:     runRepo,
		runner:      runner,
		resultCache: resultCache,
		state:       state,
		pageSize:    pageSize,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}
	if itemCount, err := h.itemRepo.GetItemCount(); err == nil {
		stats["items"] = itemCount
	}
	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		stats["runs"] = runCount
	}
	if lastRun, err := h.runRepo.GetLastRun(); err == nil && lastRun != nil {
		stats["last_run_status"] = lastRun.Status
		stats["last_run_started_at"] = lastRun.StartedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, stats)
}

// GetItems returns the deduplicated, ranked item list for the requested
// county (or the whole state), applying the serving-time engine to a
// recency-filtered candidate pool
func (h *Handler) GetItems(c *gin.Context) {
	county := c.Query("county")

	hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(defaultWindowHours)))
	if err != nil || hours <= 0 || hours > maxWindowHours {
		hours = defaultWindowHours
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.pageSize)))
	if err != nil || limit <= 0 || limit > h.pageSize*overFetchFactor {
		limit = h.pageSize
	}

	cacheKey := fmt.Sprintf("items|%s|%s|%d|%d", h.state, county, hours, limit)
	if cached, ok := h.resultCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	pool, err := h.itemRepo.GetRecentItems(h.state, county, since, limit*overFetchFactor)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_items", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	ranked := serving.Rank(pool, limit)
	if ranked == nil {
		ranked = []serving.RankedItem{}
	}

	h.resultCache.Set(cacheKey, ranked)
	c.JSON(http.StatusOK, ranked)
}

// TriggerIngest runs one ingestion cycle now, with the same semantics and
// ledger recording as a scheduled run
func (h *Handler) TriggerIngest(c *gin.Context) {
	if err := h.runner.Run(context.Background()); err != nil {
		slog.Error("Manual ingestion run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
