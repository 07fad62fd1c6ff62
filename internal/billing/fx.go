package billing

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(service.NewService),
)
