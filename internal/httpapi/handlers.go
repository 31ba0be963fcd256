package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-newsdesk/internal/apierr"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/news"
	"github.com/samvad-hq/samvad-newsdesk/internal/summarize"
)

type handlers struct {
	deps Deps
	log  logger.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// news ignores client pageSize/limit; the server value wins.
func (h *handlers) news(c *gin.Context) {
	req := news.Request{
		Topic:        c.Query("topic"),
		Page:         news.ParsePage(c.Query("page")),
		ForceRefresh: c.Query("forceRefresh") == "1",
	}

	page, err := h.deps.News.Get(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) summarize(c *gin.Context) {
	var req summarize.Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.log, apierr.InputTooLarge("Request body exceeds the size limit."))
			return
		}
		writeError(c, h.log, apierr.InvalidInput("Request body must be a JSON object."))
		return
	}

	resp, err := h.deps.Summarize.Summarize(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) stats(c *gin.Context) {
	if h.deps.Stats == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.deps.Stats())
}
