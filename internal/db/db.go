package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"subprovider/internal/model"
	"subprovider/internal/proxy"
)

func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		// hide SLOW SQL warnings
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Link{})
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// SaveLinks inserts links, skipping hashes already stored. It returns the
// number of new rows.
func SaveLinks(db *gorm.DB, links []model.Link) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).CreateInBatches(links, 500)
	return result.RowsAffected, result.Error
}

// GroupLinks loads stored links as decoder input keyed by group, in
// insertion order.
func GroupLinks(db *gorm.DB, groups []string) (map[string][]proxy.Link, error) {
	var rows []model.Link
	q := db.Model(&model.Link{}).Order("id")
	if len(groups) > 0 {
		q = q.Where("group_name IN ?", groups)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	out := make(map[string][]proxy.Link)
	for _, row := range rows {
		out[row.Group] = append(out[row.Group], proxy.Link{Name: row.Name, URL: row.URL})
	}
	return out, nil
}

// DeleteGroup removes every stored link of a group.
func DeleteGroup(db *gorm.DB, group string) (int64, error) {
	result := db.Where("group_name = ?", group).Delete(&model.Link{})
	return result.RowsAffected, result.Error
}

type GroupCount struct {
	Group string
	Count int64
}

type SchemeCount struct {
	Scheme string
	Count  int64
}

func CountByGroup(db *gorm.DB) ([]GroupCount, error) {
	var stats []GroupCount
	err := db.Model(&model.Link{}).
		Select("group_name as `group`, count(*) as count").
		Group("group_name").
		Order("group_name").
		Scan(&stats).Error
	return stats, err
}

func CountByScheme(db *gorm.DB) ([]SchemeCount, error) {
	var stats []SchemeCount
	err := db.Model(&model.Link{}).
		Select("scheme, count(*) as count").
		Group("scheme").
		Order("scheme").
		Scan(&stats).Error
	return stats, err
}
