package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistro-api/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLStore persists documents in relational tables through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path and migrates it.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite has a single writer; one connection avoids SQLITE_BUSY under concurrent requests
	sqlDB.SetMaxOpenConns(1)

	s, err := NewSQLStore(db)
	if err != nil {
		return nil, err
	}
	logger.Infof("sqlite database ready at %s", path)
	return s, nil
}

// NewSQLStore wraps an existing gorm handle and migrates the schema.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	err := db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.CartItem{},
		&models.Payment{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return &u, nil
}

func (s *SQLStore) InsertUserIfAbsent(ctx context.Context, u *models.User) (models.InsertResult, bool, error) {
	u.ID = uuid.NewString()
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		return models.InsertResult{}, false, fmt.Errorf("insert user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		u.ID = ""
		return models.InsertResult{Acknowledged: true}, false, nil
	}
	return models.InsertResult{Acknowledged: true, InsertedID: u.ID}, true, nil
}

func (s *SQLStore) SetUserRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("set role on user %s: %w", id, res.Error)
	}
	// SQLite counts matched rows as changed even when the value is unchanged.
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.RowsAffected,
		ModifiedCount: res.RowsAffected,
	}, nil
}

func (s *SQLStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (s *SQLStore) InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error) {
	item.ID = uuid.NewString()
	return s.insert(ctx, "menu item", item, item.ID)
}

func (s *SQLStore) DeleteMenuItem(ctx context.Context, id string) (models.DeleteResult, error) {
	return s.deleteByID(ctx, "menu item", &models.MenuItem{}, id)
}

func (s *SQLStore) ListCartByEmail(ctx context.Context, email string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := s.db.WithContext(ctx).Where("user_email = ?", email).Order("created_at").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list cart for %s: %w", email, err)
	}
	return items, nil
}

func (s *SQLStore) InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error) {
	item.ID = uuid.NewString()
	return s.insert(ctx, "cart item", item, item.ID)
}

func (s *SQLStore) DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error) {
	return s.deleteByID(ctx, "cart item", &models.CartItem{}, id)
}

func (s *SQLStore) InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error) {
	p.ID = uuid.NewString()
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	return s.insert(ctx, "payment", p, p.ID)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) insert(ctx context.Context, kind string, value any, id string) (models.InsertResult, error) {
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *SQLStore) deleteByID(ctx context.Context, kind string, model any, id string) (models.DeleteResult, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return models.DeleteResult{}, fmt.Errorf("delete %s %s: %w", kind, id, res.Error)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}
