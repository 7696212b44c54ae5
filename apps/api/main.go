package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/chainvoice/chainvoice/internal/auth"
	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/invoice"
	"github.com/chainvoice/chainvoice/internal/observability"
	"github.com/chainvoice/chainvoice/internal/server"
	"github.com/chainvoice/chainvoice/internal/user"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		golemdb.Module,

		auth.Module,
		user.Module,
		invoice.Module,

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
