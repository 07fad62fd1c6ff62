package main

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/clock"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/config"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/migration"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/observability"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/server"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
