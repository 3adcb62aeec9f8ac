package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/creation"
	"github.com/inkwell-hq/inkwell/internal/generation"
	"github.com/inkwell-hq/inkwell/internal/identity"
	"github.com/inkwell-hq/inkwell/internal/migration"
	"github.com/inkwell-hq/inkwell/internal/observability"
	"github.com/inkwell-hq/inkwell/internal/providers/ai"
	"github.com/inkwell-hq/inkwell/internal/providers/media"
	"github.com/inkwell-hq/inkwell/internal/quota"
	"github.com/inkwell-hq/inkwell/internal/ratelimit"
	"github.com/inkwell-hq/inkwell/internal/server"
	"github.com/inkwell-hq/inkwell/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		identity.Module,
		quota.Module,
		creation.Module,
		generation.Module,
		ai.Module,
		media.Module,
		ratelimit.Module,

		server.Module,
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
