package invoice

import (
	"github.com/chainvoice/chainvoice/internal/invoice/repository"
	"github.com/chainvoice/chainvoice/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
