package insurance

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/insurance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insurance.service",
	fx.Provide(service.NewService),
)
