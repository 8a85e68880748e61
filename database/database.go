package database

import (
	"fmt"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, runs migrations and stores the
// handle globally.
func ConnectDb() {
	cfg := config.AppConfig

	db, err := Open(cfg.DBDriver, dsnFor(cfg))
	if err != nil {
		logger.Log.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("failed to get database instance", "error", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		logger.Log.Fatal("migration failed", "error", err)
	}

	Database = DbInstance{Db: db}
	logger.Log.Info("database connected", "driver", cfg.DBDriver)
}

// Open returns a gorm handle for one of the supported drivers.
func Open(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch driver {
	case "postgres", "postgresql", "":
		return gorm.Open(postgres.Open(dsn), gormCfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite", "sqlite3":
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func dsnFor(cfg *config.Config) string {
	if cfg.DBDSN != "" {
		return cfg.DBDSN
	}
	switch cfg.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case "sqlite", "sqlite3":
		return cfg.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	}
}

// RunMigrations creates or updates every table the application uses.
func RunMigrations(db *gorm.DB) error {
	logger.Log.Info("running migrations")
	err := db.AutoMigrate(
		&models.User{},
		&course.Course{},
		&course.Lesson{},
		&course.UserCourseProgress{},
		&models.Contact{},
	)
	if err != nil {
		return err
	}
	logger.Log.Info("migrations completed")
	return nil
}
