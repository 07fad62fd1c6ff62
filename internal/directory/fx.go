package directory

import (
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(service.NewService),
)
