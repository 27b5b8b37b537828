package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

// History is the read side of the history store.
type History interface {
	List(limit int) ([]orchestrator.Result, error)
}

// Handler exposes per-session text and PDF orchestrators over JSON.
type Handler struct {
	sessions  *Sessions
	history   History
	maxUpload int64
	log       *zap.Logger
}

// NewHandler constructs a Handler. history may be nil.
func NewHandler(sessions *Sessions, history History, maxUpload int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{sessions: sessions, history: history, maxUpload: maxUpload, log: log}
}

const sessionKey = "session"

func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/sessions", h.createSession)
	g.DELETE("/sessions/:session", h.deleteSession)

	sg := g.Group("/sessions/:session", h.loadSession)
	sg.POST("/text/run", h.run(orchestrator.SurfaceText))
	sg.POST("/pdf/file", h.selectFile)
	sg.POST("/pdf/run", h.run(orchestrator.SurfacePDF))
	for _, sf := range []orchestrator.Surface{orchestrator.SurfaceText, orchestrator.SurfacePDF} {
		sg.GET("/"+string(sf)+"/status", h.status(sf))
		sg.POST("/"+string(sf)+"/clear", h.clear(sf))
	}

	g.GET("/history", h.listHistory)
}

func (h *Handler) createSession(c *gin.Context) {
	sess := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session": sess.ID})
}

func (h *Handler) deleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("session")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) loadSession(c *gin.Context) {
	sess, ok := h.sessions.Get(c.Param("session"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func sessionOf(c *gin.Context) *Session {
	return c.MustGet(sessionKey).(*Session)
}

type runRequest struct {
	Text   string `json:"text"`
	Mode   string `json:"mode"`
	Length string `json:"length"`
	Focus  string `json:"focus"`
}

func (h *Handler) run(sf orchestrator.Surface) gin.HandlerFunc {
	return func(c *gin.Context) {
		o := sessionOf(c).surface(sf)
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		cfg, err := ai.ParseConfig(req.Mode, req.Length, req.Focus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res := o.Run(c.Request.Context(), orchestrator.Input{Text: req.Text, Config: cfg})
		c.JSON(statusFor(res), res)
	}
}

func (h *Handler) selectFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "The PDF file is too large."})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("failed to open upload", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.log.Error("failed to read upload", zap.String("file", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	modTime := time.Now()
	if v := c.PostForm("last_modified"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid last_modified %q", v)})
			return
		}
		modTime = time.UnixMilli(ms)
	}

	doc, err := sessionOf(c).PDF.Select(fh.Filename, fh.Header.Get("Content-Type"), data, modTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": orchestrator.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) status(sf orchestrator.Surface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionOf(c).surface(sf).Snapshot())
	}
}

func (h *Handler) clear(sf orchestrator.Surface) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionOf(c).surface(sf).Clear()
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is disabled"})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	items, err := h.history.List(limit)
	if err != nil {
		h.log.Error("failed to list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}
	if items == nil {
		items = []orchestrator.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func statusFor(res orchestrator.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	switch res.ErrorClass {
	case orchestrator.ClassValidation:
		return http.StatusBadRequest
	case orchestrator.ClassExtraction:
		return http.StatusUnprocessableEntity
	case orchestrator.ClassCanceled:
		return http.StatusRequestTimeout
	case orchestrator.ClassRequest:
		var rerr *ai.RequestError
		if errors.As(res.Err(), &rerr) && rerr.Kind == ai.KindQuota {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
