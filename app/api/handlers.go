package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lysyi3m/post-comb/app/database"
	"github.com/lysyi3m/post-comb/app/filter"
	"github.com/lysyi3m/post-comb/app/post"
	"github.com/lysyi3m/post-comb/app/tasks"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func NewHandler(postRepo database.PostRepositoryInterface, verdictRepo database.VerdictRepositoryInterface,
	generator GeneratorInterface, live LiveCounter, chain tasks.Classifier,
	scheduler tasks.TaskSchedulerInterface, analyzeLimit int, version string) *Handler {
	return &Handler{
		postRepo:     postRepo,
		verdictRepo:  verdictRepo,
		generator:    generator,
		live:         live,
		chain:        chain,
		scheduler:    scheduler,
		analyzeLimit: analyzeLimit,
		version:      version,
	}
}

func (h *Handler) GetHamFeed(c *gin.Context) {
	verdicts, err := h.verdictRepo.ListVerdicts(c.Request.Context(), string(filter.StatusHam), defaultListLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_verdicts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(verdicts)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(verdicts)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if postCount, err := h.postRepo.GetPostCount(c.Request.Context()); err == nil {
		health["stored_posts"] = postCount
	} else {
		health["status"] = "degraded"
		slog.Warn("Health check database error", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.verdictRepo.GetVerdictStats(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "verdict_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	postCount, err := h.postRepo.GetPostCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "post_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := gin.H{
		"verdicts":     stats,
		"classified":   stats.Total(),
		"stored_posts": postCount,
	}
	if h.live != nil {
		response["live_posts"] = h.live.LiveCount()
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListVerdicts(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if _, err := filter.ParseStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	verdicts, err := h.verdictRepo.ListVerdicts(c.Request.Context(), status, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_verdicts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verdicts": lo.Map(verdicts, func(v database.Verdict, _ int) verdictResponse {
			return verdictResponse(v)
		}),
		"total": len(verdicts),
	})
}

func (h *Handler) APIListPosts(c *gin.Context) {
	category, err := post.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	posts, err := h.postRepo.GetPosts(c.Request.Context(), category, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": lo.Map(posts, func(p post.Post, _ int) postResponse { return toPostResponse(p) }),
		"total": len(posts),
	})
}

func (h *Handler) APIGetPost(c *gin.Context) {
	id := c.Param("id")

	p, err := h.postRepo.GetPost(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "post", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	response := gin.H{"post": toPostResponse(*p)}
	if h.chain != nil {
		trace := lo.Map(h.chain.RunAll(c.Request.Context(), *p), func(o filter.Outcome, _ int) gin.H {
			entry := gin.H{"filter": o.Filter, "elapsed": o.Elapsed.String()}
			if o.Verdict != nil {
				entry["status"] = o.Verdict.Status
				entry["reason"] = o.Verdict.Reason.String()
			}
			return entry
		})
		response["filters"] = trace
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APISetCategory(c *gin.Context) {
	id := c.Param("id")

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category, err := post.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.postRepo.SetCategory(c.Request.Context(), id, category)
	if err != nil {
		slog.Error("Database error", "operation", "set_category", "post", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	slog.Info("Post category set", "post", id, "category", string(category))

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "category": string(category)})
}

func (h *Handler) APIAnalyze(c *gin.Context) {
	category, err := post.ParseCategory(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := tasks.NewAnalyzeTask(category, h.analyzeLimit, h.postRepo, h.chain)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing analyze task", "category", task.Subject, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue analyze task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Analyze task enqueued",
		"task": gin.H{
			"id":      task.ID,
			"type":    task.Type,
			"subject": task.Subject,
		},
	})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}

	return min(limit, maxListLimit), true
}

func toPostResponse(p post.Post) postResponse {
	return postResponse{
		ID:       p.ID,
		Author:   p.Author,
		Score:    p.Score,
		Title:    p.Title,
		Created:  p.Created,
		Body:     p.Body,
		Link:     p.Link,
		Category: string(p.Category),
	}
}
