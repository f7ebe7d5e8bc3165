// Package store holds the persistence collaborators for users, menu items,
// cart items and payment records. Two backends implement Store: a gorm one
// over SQLite and a MongoDB one matching the collections the service
// originally ran against.
package store

import (
	"context"
	"errors"
	"fmt"

	"bistro-api/config"
	"bistro-api/models"

	logging "github.com/op/go-logging"
)

var logger = logging.MustGetLogger("store")

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Store is the data-store surface the HTTP layer depends on. Every method is
// a single operation against one collection.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// InsertUserIfAbsent atomically inserts u unless a user with the same
	// email exists. created is false when nothing was written.
	InsertUserIfAbsent(ctx context.Context, u *models.User) (res models.InsertResult, created bool, err error)
	SetUserRole(ctx context.Context, id string, role models.UserRole) (models.UpdateResult, error)

	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error)
	DeleteMenuItem(ctx context.Context, id string) (models.DeleteResult, error)

	ListCartByEmail(ctx context.Context, email string) ([]models.CartItem, error)
	InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error)
	DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error)

	InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err = OpenSQLite(cfg.SQLitePath)
	case config.DriverMongo:
		s, err = OpenMongo(ctx, cfg.MongoURI(), cfg.Name)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
