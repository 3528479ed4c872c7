// Package di assembles the portfolio server from its configuration.
package di

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
	"github.com/g-s-k-zoro/gsk-man-page/internal/interfaces/websocket"
	"github.com/g-s-k-zoro/gsk-man-page/internal/observability"
	"github.com/g-s-k-zoro/gsk-man-page/internal/positions"
	"github.com/g-s-k-zoro/gsk-man-page/internal/search"
	"github.com/g-s-k-zoro/gsk-man-page/internal/site"
	"github.com/g-s-k-zoro/gsk-man-page/internal/visitor"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Collector       *observability.Collector
	TracingShutdown observability.ShutdownFunc
	Site            *site.Site
	Search          *search.Service
	Visitors        *visitor.Counter
	Positions       *positions.Directory
	Hub             *websocket.Hub
	Sessions        *websocket.Server
	Watcher         *config.DefinitionWatcher
	Handler         http.Handler
	Server          *http.Server
}

// Start runs the background pieces: the session hub and, when enabled, the
// definition watcher.
func (c *Container) Start() error {
	go c.Hub.Run()
	if c.Watcher != nil {
		if err := c.Watcher.Start(); err != nil {
			return err
		}
		c.Logger.Info("Watching graph definition", zap.String("path", c.Config.Graph.DefinitionPath))
	}
	return nil
}

// Shutdown stops the HTTP server, then everything Start started, then
// flushes traces.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if err := c.Server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	c.Hub.Stop()
	if c.TracingShutdown != nil {
		if err := c.TracingShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
