package media

import (
	"context"

	"github.com/inkwell-hq/inkwell/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.media",
	fx.Provide(NewFromConfig),
	fx.Invoke(registerEnsureBucket),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Store, error) {
	return NewMinIO(Config{
		Endpoint:  cfg.MediaEndpoint,
		AccessKey: cfg.MediaAccessKey,
		SecretKey: cfg.MediaSecretKey,
		Bucket:    cfg.MediaBucket,
		UseSSL:    cfg.MediaUseSSL,
		PublicURL: cfg.MediaPublicURL,
	}, log)
}

func registerEnsureBucket(lc fx.Lifecycle, store Store) {
	mstore, ok := store.(*MinIOStore)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return mstore.EnsureBucket(ctx)
		},
	})
}
