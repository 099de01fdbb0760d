package session

import (
	"go.uber.org/fx"

	"github.com/nlhtungg/parking-lot/internal/session/repository"
	"github.com/nlhtungg/parking-lot/internal/session/service"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
