package execution

import (
	"github.com/smallbiznis/scolara/internal/execution/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("execution",
	fx.Provide(repository.Provide),
)
