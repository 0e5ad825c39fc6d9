package main

import (
	"gorm.io/gorm"

	"subprovider/internal/config"
	"subprovider/internal/db"
	"subprovider/internal/geoip"
	"subprovider/internal/logger"
	"subprovider/internal/service"
)

func openDB(cfg *config.Config) (*gorm.DB, error) {
	database, err := db.Connect(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		db.Close(database)
		return nil, err
	}
	return database, nil
}

// builderOptions opens the link store and, when configured, the country
// database. The returned func releases both.
func builderOptions(cfg *config.Config, useDB bool) ([]service.Option, func(), error) {
	var (
		opts    []service.Option
		closers []func()
	)
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if useDB {
		database, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, service.WithDB(database))
		closers = append(closers, func() { db.Close(database) })
	}

	if cfg.GeoIP.FlagNames && cfg.GeoIP.CountryPath != "" {
		reader, err := geoip.Open(cfg.GeoIP.CountryPath)
		if err != nil {
			logger.Log.Warnf("%v. Names will not carry flags.", err)
		} else {
			opts = append(opts, service.WithCountries(reader))
			closers = append(closers, func() { _ = reader.Close() })
		}
	}

	return opts, cleanup, nil
}
