package billingrule

import (
	"github.com/smallbiznis/scolara/internal/billingrule/repository"
	"github.com/smallbiznis/scolara/internal/billingrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
