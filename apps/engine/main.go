package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scolara/internal/billingrule"
	"github.com/smallbiznis/scolara/internal/clock"
	"github.com/smallbiznis/scolara/internal/config"
	"github.com/smallbiznis/scolara/internal/engine"
	"github.com/smallbiznis/scolara/internal/execution"
	"github.com/smallbiznis/scolara/internal/fee"
	"github.com/smallbiznis/scolara/internal/migration"
	"github.com/smallbiznis/scolara/internal/roster"
	"github.com/smallbiznis/scolara/pkg/db"
	"github.com/smallbiznis/scolara/pkg/log"
	"go.uber.org/fx"
)

// Headless engine runner for deployments that split the HTTP surface from the
// recurring billing loop.
func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		roster.Module,
		billingrule.Module,
		fee.Module,
		execution.Module,
		engine.Module,

		// No server module.
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
