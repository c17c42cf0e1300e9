package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/dreamnest/dreamnest/internal/config"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	mediadomain "github.com/dreamnest/dreamnest/internal/media/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations target postgres. Other dialects (sqlite for
		// local hacking, mysql) get the schema from gorm instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&ledgerdomain.User{},
				&ledgerdomain.CreditOrder{},
				&ledgerdomain.ToolGeneration{},
				&mediadomain.MediaItem{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
