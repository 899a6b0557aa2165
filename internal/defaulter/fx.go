package defaulter

import (
	"github.com/smallbiznis/scolara/internal/config"
	"github.com/smallbiznis/scolara/internal/defaulter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("defaulter.service",
	fx.Provide(config.NewDefaulterConfigHolder),
	fx.Provide(service.NewService),
)
