package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/dreamnest/dreamnest/internal/config"
	"github.com/dreamnest/dreamnest/internal/migration"
	"github.com/dreamnest/dreamnest/internal/observability"
	"github.com/dreamnest/dreamnest/internal/server"
	"github.com/dreamnest/dreamnest/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
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
