package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/migration"
	"github.com/tallyhq/tally/internal/server"
	"github.com/tallyhq/tally/pkg/db"
	"github.com/tallyhq/tally/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
