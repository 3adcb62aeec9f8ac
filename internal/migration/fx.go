package migration

import (
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	"github.com/inkwell-hq/inkwell/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite is dev/test only; golang-migrate files target postgres
			return conn.AutoMigrate(&creationdomain.Creation{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
