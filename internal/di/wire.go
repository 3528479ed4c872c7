//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/g-s-k-zoro/gsk-man-page/internal/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCollector,
	ProvideTracing,
	ProvideGraphLoader,
	ProvideSite,
	ProvideSearch,
	ProvideVisitorCounter,
	ProvideContactSender,
	ProvidePositionDirectory,
	ProvideHub,
	ProvideSessionServer,
	ProvideDefinitionWatcher,
	ProvideRouter,
	ProvideHTTPServer,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
