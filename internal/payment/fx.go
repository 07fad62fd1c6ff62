package payment

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(service.NewService),
)
