// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the report page over HTTP. Every page view mounts a
// form controller kept in an in-memory session; the page drives it through a
// small JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hersafety/locreport/form"
	"github.com/hersafety/locreport/geocoding"
	"github.com/hersafety/locreport/identity"
	"github.com/hersafety/locreport/spatial"
)

//go:embed templates
var templatesFS embed.FS

const (
	defaultSessionTTL = 30 * time.Minute
	identityMaxAge    = 365 * 24 * time.Hour
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Listen      string
	SessionTTL  time.Duration
	CORSOrigins []string
}

type Server struct {
	geocoder  geocoding.Geocoder
	submitter form.Submitter
	sessions  *sessionStore
	opts      Options
}

func NewServer(geocoder geocoding.Geocoder, submitter form.Submitter, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}

	return &Server{
		geocoder:  geocoder,
		submitter: submitter,
		sessions:  newSessionStore(opts.SessionTTL),
		opts:      opts,
	}
}

// Handler builds the router.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()

	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	static, err := fs.Sub(templatesFS, "templates/static")
	if err != nil {
		panic(err)
	}

	r.StaticFS("/static", http.FS(static))

	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/report")
	})
	r.GET("/report", s.reportView)

	api := r.Group("/api/sessions/:id")
	api.GET("", s.getSession)
	api.PUT("/search", s.search)
	api.POST("/location", s.selectLocation)
	api.POST("/use-location", s.useLocation)
	api.PUT("/description", s.setDescription)
	api.POST("/identity", s.setIdentity)
	api.POST("/submit", s.submit)
	api.DELETE("", s.closeSession)

	return r
}

// Run serves until ctx is canceled, then shuts down and closes every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.expireSessions(ctx)

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Listening on http://%s/report", s.opts.Listen)

		errCh <- srv.ListenAndServe()
	}()

	var err error

	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = srv.Shutdown(shutdownCtx)
	}

	s.sessions.closeAll()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("serving %s: %w", s.opts.Listen, err)
	}

	return nil
}

func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SessionTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				log.Printf("Closed %d idle sessions", n)
			}
		}
	}
}

type reportPage struct {
	SessionID string
	Header    string
	State     form.State
	Selected  string
}

func (s *Server) reportView(ctx *gin.Context) {
	userID := identity.EnsureCookie(ctx.Writer, ctx.Request, identityMaxAge)

	ctrl := form.Mount(ctx.Request.URL.Query(), form.Deps{
		Geocoder:  s.geocoder,
		Submitter: s.submitter,
		Identity:  identity.Static(userID),
	})
	id := s.sessions.add(ctrl)
	state := ctrl.Snapshot()

	ctx.HTML(http.StatusOK, "report.html", reportPage{
		SessionID: id,
		Header:    state.Header(),
		State:     state,
		Selected:  selectedText(state.Point),
	})
}

// SessionResponse is the state returned by every session endpoint.
type SessionResponse struct {
	form.State

	Header   string `json:"header"`
	Selected string `json:"selected"`
}

func newSessionResponse(state form.State) SessionResponse {
	return SessionResponse{
		State:    state,
		Header:   state.Header(),
		Selected: selectedText(state.Point),
	}
}

func selectedText(p *spatial.Point) string {
	if p == nil {
		return ""
	}

	return "Selected: " + p.Format()
}

// controller resolves the session of the request or answers 404.
func (s *Server) controller(ctx *gin.Context) (*form.Controller, bool) {
	ctrl, err := s.sessions.get(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		return nil, false
	}

	return ctrl, true
}

func (s *Server) getSession(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

type SearchRequest struct {
	Query string `json:"query"`
}

func (s *Server) search(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	var req SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctrl.SetSearchText(req.Query)
	// Only Close aborts the lookup, not the browser going away.
	ctrl.Search(context.WithoutCancel(ctx.Request.Context()))

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (s *Server) selectLocation(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	var req LocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	p := spatial.Point{Lat: *req.Lat, Lng: *req.Lng}
	if !p.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})

		return
	}

	ctrl.SelectPoint(p)

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

func (s *Server) useLocation(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	ctrl.UseCurrentLocation()

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

type DescriptionRequest struct {
	Description string `json:"description"`
}

func (s *Server) setDescription(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	var req DescriptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctrl.SetDescription(req.Description)

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

// IdentityRequest carries the identifier resolved by an embedding page.
type IdentityRequest struct {
	UserID string `json:"userid" binding:"required"`
}

func (s *Server) setIdentity(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	var req IdentityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctrl.SetUserID(req.UserID)

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

func (s *Server) submit(ctx *gin.Context) {
	ctrl, ok := s.controller(ctx)
	if !ok {
		return
	}

	ctrl.Submit(context.WithoutCancel(ctx.Request.Context()))

	ctx.JSON(http.StatusOK, newSessionResponse(ctrl.Snapshot()))
}

func (s *Server) closeSession(ctx *gin.Context) {
	if !s.sessions.remove(ctx.Param("id")) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": ErrSessionNotFound.Error()})

		return
	}

	ctx.Status(http.StatusNoContent)
}
