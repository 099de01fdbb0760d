package subscription

import (
	"go.uber.org/fx"

	"github.com/nlhtungg/parking-lot/internal/subscription/repository"
	"github.com/nlhtungg/parking-lot/internal/subscription/service"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
