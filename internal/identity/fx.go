package identity

import (
	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/identity/client"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.client",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) identitydomain.Service {
	return client.New(client.Config{
		BaseURL: cfg.IdentityBaseURL,
		Secret:  cfg.IdentitySecret,
	})
}
