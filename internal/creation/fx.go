package creation

import (
	"github.com/inkwell-hq/inkwell/internal/creation/repository"
	"github.com/inkwell-hq/inkwell/internal/creation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("creation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
