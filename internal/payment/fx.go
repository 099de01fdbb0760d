package payment

import (
	"go.uber.org/fx"

	"github.com/nlhtungg/parking-lot/internal/payment/repository"
	"github.com/nlhtungg/parking-lot/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
