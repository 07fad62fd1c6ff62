package refund

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/refund/service"
	"go.uber.org/fx"
)

var Module = fx.Module("refund.service",
	fx.Provide(service.NewService),
)
