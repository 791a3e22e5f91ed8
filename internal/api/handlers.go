package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taleweaver/internal/export"
	"taleweaver/internal/game"
	"taleweaver/internal/game/director"
	"taleweaver/internal/game/narration"
	"taleweaver/internal/observability"
	"taleweaver/internal/session"
)

// Catalog is the read side of story storage.
type Catalog interface {
	Load(ctx context.Context, key string) (*game.NarrativeState, error)
	List(ctx context.Context) ([]game.Summary, error)
}

type Handler struct {
	sessions *session.Registry
	stories  Catalog
	logger   *zap.Logger
}

func NewHandler(sessions *session.Registry, stories Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		stories:  stories,
		logger:   logger.Named("api"),
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.health)
	router.GET("/genres", h.genres)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.deleteSession)
		sessions.POST("/:id/begin", h.begin)
		sessions.POST("/:id/setup", h.setup)
		sessions.POST("/:id/starters", h.starters)
		sessions.POST("/:id/starters/:index", h.selectStarter)
		sessions.GET("/:id/choices", h.choices)
		sessions.POST("/:id/choices/:index", h.choose)
		sessions.POST("/:id/actions", h.customAction)
		sessions.POST("/:id/end", h.end)
		sessions.GET("/:id/ending", h.ending)
		sessions.POST("/:id/save", h.save)
		sessions.POST("/:id/resume", h.resume)
		sessions.POST("/:id/reset", h.reset)
	}

	stories := router.Group("/stories")
	{
		stories.GET("", h.listStories)
		stories.GET("/:key/export", h.exportStory)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) genres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": narration.Genres})
}

func (h *Handler) createSession(c *gin.Context) {
	s := h.sessions.Create()
	var view View
	_ = s.Do(func(d *director.Director) error {
		view = newView(s.ID, d)
		return nil
	})
	h.logger.Info("session created", zap.String("session_id", s.ID))
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) getSession(c *gin.Context) {
	h.act(c, func(context.Context, *director.Director) error { return nil })
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) begin(c *gin.Context) {
	h.act(c, func(_ context.Context, d *director.Director) error {
		return d.Begin()
	})
}

func (h *Handler) setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.act(c, func(_ context.Context, d *director.Director) error {
		return d.Configure(req.Genre, req.CharacterName, req.CharacterTrait)
	})
}

func (h *Handler) starters(c *gin.Context) {
	h.act(c, func(ctx context.Context, d *director.Director) error {
		_, err := d.Starters(ctx)
		return err
	})
}

func (h *Handler) selectStarter(c *gin.Context) {
	i, err := index(c)
	if err != nil {
		handleError(c, err)
		return
	}
	h.act(c, func(ctx context.Context, d *director.Director) error {
		return d.SelectStarter(ctx, i)
	})
}

func (h *Handler) choices(c *gin.Context) {
	h.act(c, func(ctx context.Context, d *director.Director) error {
		_, err := d.Choices(ctx)
		return err
	})
}

func (h *Handler) choose(c *gin.Context) {
	i, err := index(c)
	if err != nil {
		handleError(c, err)
		return
	}
	h.act(c, func(ctx context.Context, d *director.Director) error {
		return d.Choose(ctx, i)
	})
}

func (h *Handler) customAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.act(c, func(ctx context.Context, d *director.Director) error {
		return d.ChooseCustom(ctx, req.Action)
	})
}

func (h *Handler) end(c *gin.Context) {
	h.act(c, func(_ context.Context, d *director.Director) error {
		return d.EndStory()
	})
}

func (h *Handler) ending(c *gin.Context) {
	h.act(c, func(ctx context.Context, d *director.Director) error {
		_, err := d.Ending(ctx)
		return err
	})
}

func (h *Handler) save(c *gin.Context) {
	h.act(c, func(ctx context.Context, d *director.Director) error {
		_, err := d.Save(ctx)
		return err
	})
}

func (h *Handler) resume(c *gin.Context) {
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.act(c, func(ctx context.Context, d *director.Director) error {
		return d.Resume(ctx, req.Key)
	})
}

func (h *Handler) reset(c *gin.Context) {
	h.act(c, func(_ context.Context, d *director.Director) error {
		d.Reset()
		return nil
	})
}

func (h *Handler) listStories(c *gin.Context) {
	summaries, err := h.stories.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if summaries == nil {
		summaries = []game.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"stories": summaries})
}

func (h *Handler) exportStory(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	key := c.Param("key")
	state, err := h.stories.Load(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, state); err != nil {
		handleError(c, err)
		return
	}
	filename := strconv.Quote(state.StoryID + format.Extension())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// act runs fn against the session's Director and renders the resulting
// view. A Notice still renders the view, with the notice attached.
func (h *Handler) act(c *gin.Context, fn func(ctx context.Context, d *director.Director) error) {
	id := c.Param("id")
	s, err := h.sessions.Get(id)
	if err != nil {
		handleError(c, err)
		return
	}

	ctx := observability.WithSessionID(c.Request.Context(), id)
	var view View
	err = s.Do(func(d *director.Director) error {
		ferr := fn(ctx, d)
		view = newView(id, d)
		return ferr
	})

	if n, ok := director.AsNotice(err); ok {
		h.logger.Warn("request completed with notice",
			zap.String("session_id", id),
			zap.String("kind", string(n.Kind)),
			zap.Error(n.Err))
		view.Notice = &NoticeView{Kind: n.Kind, Message: n.Message}
		c.JSON(http.StatusOK, view)
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func index(c *gin.Context) (int, error) {
	raw := c.Param("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", errBadRequest, raw)
	}
	return i, nil
}
