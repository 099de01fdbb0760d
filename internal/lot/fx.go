package lot

import (
	"go.uber.org/fx"

	"github.com/nlhtungg/parking-lot/internal/lot/repository"
	"github.com/nlhtungg/parking-lot/internal/lot/service"
)

var Module = fx.Module("lot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
