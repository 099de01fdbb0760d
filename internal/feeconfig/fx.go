package feeconfig

import (
	"go.uber.org/fx"

	"github.com/nlhtungg/parking-lot/internal/feeconfig/repository"
)

var Module = fx.Module("feeconfig",
	fx.Provide(repository.Provide),
)
