package user

import (
	"github.com/chainvoice/chainvoice/internal/user/repository"
	"github.com/chainvoice/chainvoice/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
