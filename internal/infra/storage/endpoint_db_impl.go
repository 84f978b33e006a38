package storage

import (
	"context"
	"errors"
	"fmt"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dbEndpointStorage struct {
	db *gorm.DB
}

// NewDBClient opens the endpoint store and migrates its schema.
func NewDBClient(c *configs.AppConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DatabaseConfig.Driver {
	case configs.DriverSQLite:
		dialector = sqlite.Open(c.DatabaseConfig.GetDSN())
	default:
		dialector = mysql.Open(c.DatabaseConfig.GetDSN())
	}

	opt := c.DatabaseOptionConfig
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(utils.GetLogger().WithField("component", "gorm"), opt.LogLevel, opt.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(opt.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opt.MaxOpenConns)
	if opt.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}
	if opt.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opt.ConnMaxIdleTime)
	}

	if err := db.AutoMigrate(&model.Endpoint{}); err != nil {
		return nil, fmt.Errorf("failed to migrate endpoint table: %w", err)
	}
	return db, nil
}

func NewDBEndpointStorage(db *gorm.DB) EndpointDBStorageIface {
	return &dbEndpointStorage{db: db}
}

var _ EndpointDBStorageIface = (*dbEndpointStorage)(nil)

func (s *dbEndpointStorage) SaveEndpointToDB(ctx context.Context, ep *model.Endpoint) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "request", "response", "status", "source", "method", "uri", "match_index", "updated_at",
		}),
	}).Create(ep).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save endpoint [%s]: %w", ep.ID, err)
	}

	// an upsert keeps the original created_at; read it back so callers
	// index the row by its stored position
	var createdAt []int64
	if err := tx.Model(&model.Endpoint{}).Where("id = ?", ep.ID).Pluck("created_at", &createdAt).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to read back endpoint [%s]: %w", ep.ID, err)
	}
	if len(createdAt) == 1 {
		ep.CreatedAt = createdAt[0]
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *dbEndpointStorage) GetEndpointFromDB(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	ep := &model.Endpoint{}
	if err := s.db.WithContext(ctx).First(ep, "id = ?", endpointID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint from db: %w", err)
	}
	return ep, nil
}

func (s *dbEndpointStorage) DeleteEndpointFromDB(ctx context.Context, endpointID string) error {
	res := s.db.WithContext(ctx).Delete(&model.Endpoint{}, "id = ?", endpointID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete endpoint from db: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

func (s *dbEndpointStorage) BatchGetEndpoints(ctx context.Context, endpointIDs []string) ([]*model.Endpoint, error) {
	var eps []*model.Endpoint
	if len(endpointIDs) == 0 {
		return eps, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", endpointIDs).Order("created_at, id").Find(&eps).Error; err != nil {
		return nil, fmt.Errorf("failed to batch get endpoints: %w", err)
	}
	return eps, nil
}

func (s *dbEndpointStorage) ListEndpoints(ctx context.Context, filter *model.EndpointFilter) ([]*model.Endpoint, error) {
	var eps []*model.Endpoint
	db := applyFilter(s.db.WithContext(ctx).Model(&model.Endpoint{}), filter)
	if err := db.Order("created_at, id").Find(&eps).Error; err != nil {
		return nil, fmt.Errorf("failed to list endpoints with filter: %w", err)
	}
	return eps, nil
}

func (s *dbEndpointStorage) ListEndpointsWithPage(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error) {
	var eps []*model.Endpoint
	var total int64
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	db := applyFilter(s.db.WithContext(ctx).Model(&model.Endpoint{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count endpoints: %w", err)
	}

	if err := db.Order("created_at, id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&eps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list endpoints with pagination: %w", err)
	}
	return eps, total, nil
}

func applyFilter(db *gorm.DB, filter *model.EndpointFilter) *gorm.DB {
	if filter == nil {
		return db
	}
	if filter.EndpointID != nil {
		db = db.Where("id = ?", *filter.EndpointID)
	}
	if filter.Method != nil {
		db = db.Where("method = ?", *filter.Method)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.URIContains != nil {
		db = db.Where("uri LIKE ?", "%"+*filter.URIContains+"%")
	}
	if filter.MatchIndex != nil {
		db = db.Where("match_index = ?", *filter.MatchIndex)
	}
	return db
}
