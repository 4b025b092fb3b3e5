package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiwei-tsao/tgchecker/internal/business/lookup"
	"github.com/weiwei-tsao/tgchecker/internal/repository"
	"github.com/weiwei-tsao/tgchecker/pkg/tgchecker"
)

// Router wires HTTP handlers.
type Router struct {
	lookup  *lookup.Service
	origins string
}

func NewRouter(svc *lookup.Service, allowedOrigins string) *gin.Engine {
	r := &Router{
		lookup:  svc,
		origins: allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"configured": svc.Configured(),
			"history":    svc.HistoryEnabled(),
		})
	})

	api := router.Group("/api")
	{
		api.GET("/check", r.checkQuery)
		api.POST("/check", r.checkBody)
		api.GET("/check/:number", r.checkNumber)
		api.GET("/history", r.listHistory)
		api.GET("/numbers/:number/latest", r.latestStatus)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// checkQuery accepts ?numbers=a,b and repeated numbers parameters.
// A literal '+' must be sent as %2B or it arrives as a space.
func (r *Router) checkQuery(c *gin.Context) {
	var numbers []string
	for _, v := range c.QueryArray("numbers") {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				numbers = append(numbers, n)
			}
		}
	}
	r.runCheck(c, numbers)
}

type checkReq struct {
	Numbers []string `json:"numbers" binding:"required"`
}

func (r *Router) checkBody(c *gin.Context) {
	var req checkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "kind": tgchecker.KindValidation.String()})
		return
	}
	r.runCheck(c, req.Numbers)
}

func (r *Router) runCheck(c *gin.Context, numbers []string) {
	report, err := r.lookup.Check(c.Request.Context(), numbers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) checkNumber(c *gin.Context) {
	status, err := r.lookup.CheckNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (r *Router) listHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := r.lookup.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

func (r *Router) latestStatus(c *gin.Context) {
	status, err := r.lookup.Latest(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func writeError(c *gin.Context, err error) {
	kind := tgchecker.Kind(err)
	code := http.StatusInternalServerError
	switch kind {
	case tgchecker.KindConfiguration:
		code = http.StatusServiceUnavailable
	case tgchecker.KindValidation:
		code = http.StatusBadRequest
	case tgchecker.KindRequest:
		code = http.StatusBadGateway
	case tgchecker.KindNotFound:
		code = http.StatusNotFound
	default:
		switch {
		case errors.Is(err, lookup.ErrHistoryDisabled):
			code = http.StatusNotImplemented
		case errors.Is(err, repository.ErrNotFound):
			code = http.StatusNotFound
		}
	}
	c.JSON(code, gin.H{"error": err.Error(), "kind": kind.String()})
}
