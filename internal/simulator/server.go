// Package simulator is a stand-in for the mask bridge: it accepts preview
// uploads, keeps the latest frame and streams received frames to websocket
// viewers.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/render"
)

// Frame is the document streamed to viewers for every accepted upload.
type Frame struct {
	Seq        int       `json:"seq"`
	ReceivedAt time.Time `json:"receivedAt"`
	Pixels     []string  `json:"pixels"`
}

// Status is returned by GET /status.
type Status struct {
	Frames       int        `json:"frames"`
	Viewers      int        `json:"viewers"`
	LastReceived *time.Time `json:"lastReceived,omitempty"`
}

// Server implements the upload endpoint.
type Server struct {
	engine   *gin.Engine
	hub      *hub
	upgrader websocket.Upgrader
	outDir   string
	preview  render.Options
	now      func() time.Time

	startOnce sync.Once
	hubCtx    context.Context

	mu     sync.RWMutex
	latest []grid.Color
	seq    int
	at     time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithOutputDir writes every accepted frame as a PNG into dir.
func WithOutputDir(dir string) Option { return func(s *Server) { s.outDir = dir } }

// WithPreviewOptions sets how frame.png is rendered.
func WithPreviewOptions(o render.Options) Option { return func(s *Server) { s.preview = o } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New creates a Server. Call Start or Run before accepting websocket viewers.
func New(opts ...Option) *Server {
	s := &Server{
		hub: newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		preview: render.DefaultOptions(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.POST("/preview", s.handlePreview)
	r.GET("/frame.png", s.handleFramePNG)
	r.GET("/frame.bin", s.handleFrameBin)
	r.GET("/status", s.handleStatus)
	r.GET("/ws", s.handleWS)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Start runs the websocket hub until ctx is done. It is safe to call more than once.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.hubCtx = ctx
		s.mu.Unlock()
		go s.hub.run(ctx)
	})
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.Start(ctx)
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logrus.Infof("simulator listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("simulator: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("simulator: shutdown: %w", err)
	}
	return nil
}

// Latest returns the most recent frame and its sequence number.
func (s *Server) Latest() ([]grid.Color, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, 0
	}
	out := make([]grid.Color, len(s.latest))
	copy(out, s.latest)
	return out, s.seq
}

func respondError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"status": "error", "message": msg})
}

type previewRequest struct {
	Pixels *[]string `json:"pixels"`
}

func (s *Server) handlePreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Pixels == nil {
		respondError(c, http.StatusBadRequest, "missing pixels")
		return
	}
	colors := export.ParsePixels(*req.Pixels)
	if len(*req.Pixels) != grid.Size {
		logrus.Warnf("preview: got %d pixels, want %d", len(*req.Pixels), grid.Size)
	}

	s.mu.Lock()
	s.seq++
	s.latest = colors
	s.at = s.now()
	frame := Frame{Seq: s.seq, ReceivedAt: s.at, Pixels: hexes(colors)}
	s.mu.Unlock()

	if s.outDir != "" {
		if err := s.writeFrame(frame.Seq, colors); err != nil {
			logrus.Errorf("preview: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to store frame")
			return
		}
	}
	if msg, err := json.Marshal(frame); err == nil {
		s.hub.publish(msg)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func hexes(colors []grid.Color) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c.Hex()
	}
	return out
}

func (s *Server) writeFrame(seq int, colors []grid.Color) error {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, export.Image(colors)); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	path := filepath.Join(s.outDir, fmt.Sprintf("frame-%05d.png", seq))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *Server) handleFramePNG(c *gin.Context) {
	colors, _ := s.Latest()
	if colors == nil {
		respondError(c, http.StatusNotFound, "no frame received yet")
		return
	}
	opts := s.preview
	if v := c.Query("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 64 {
			respondError(c, http.StatusBadRequest, "scale must be between 1 and 64")
			return
		}
		opts.CellSize = n
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, render.Preview(colors, nil, opts)); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleFrameBin(c *gin.Context) {
	colors, _ := s.Latest()
	if colors == nil {
		respondError(c, http.StatusNotFound, "no frame received yet")
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", export.DeviceFrame(colors))
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.RLock()
	st := Status{Frames: s.seq, Viewers: s.hub.count()}
	if !s.at.IsZero() {
		at := s.at
		st.LastReceived = &at
	}
	s.mu.RUnlock()
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleWS(c *gin.Context) {
	s.mu.RLock()
	hubCtx := s.hubCtx
	s.mu.RUnlock()
	if hubCtx == nil || hubCtx.Err() != nil {
		respondError(c, http.StatusServiceUnavailable, "frame stream not running")
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("ws upgrade: %v", err)
		return
	}
	v := &viewer{hub: s.hub, conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.RLock()
	if s.latest != nil {
		if msg, err := json.Marshal(Frame{Seq: s.seq, ReceivedAt: s.at, Pixels: hexes(s.latest)}); err == nil {
			v.send <- msg
		}
	}
	s.mu.RUnlock()

	select {
	case s.hub.register <- v:
	case <-hubCtx.Done():
		conn.Close()
		return
	}
	go v.writePump()
	go v.readPump(hubCtx)
}
