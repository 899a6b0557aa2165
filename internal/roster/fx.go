package roster

import (
	"github.com/smallbiznis/scolara/internal/roster/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("roster",
	fx.Provide(repository.Provide),
)
