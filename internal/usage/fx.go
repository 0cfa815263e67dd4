package usage

import (
	"github.com/tallyhq/tally/internal/usage/repository"
	"github.com/tallyhq/tally/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
