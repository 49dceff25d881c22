package repositories

import (
	"context"
	"errors"
	"time"

	"stashbox/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrOTPNotFound     = errors.New("passcode not found")
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PredicateKind enumerates the filter/sort predicates a file search can
// carry. Predicates are built by the query builder and applied in order
// by the file repository.
type PredicateKind string

const (
	PredicateOwnership    PredicateKind = "ownership"
	PredicateCategoryIn   PredicateKind = "category_in"
	PredicateNameContains PredicateKind = "name_contains"
	PredicateLimit        PredicateKind = "limit"
	PredicateOrder        PredicateKind = "order"
)

// Predicate is one element of a file search. Only the fields relevant to
// its Kind are set.
type Predicate struct {
	Kind       PredicateKind
	OwnerID    uint
	OwnerEmail string
	Categories []models.FileCategory
	Search     string
	Limit      int
	OrderField string
	Descending bool
}

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (models.User, error)
	GetByAccountID(ctx context.Context, tx *gorm.DB, accountID string) (models.User, error)
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByIDAndOwner(ctx context.Context, tx *gorm.DB, fileID uint, ownerID uint) (models.File, error)
	GetByIDForViewer(ctx context.Context, tx *gorm.DB, fileID uint, viewerID uint, viewerEmail string) (models.File, error)
	UpdateSharedWith(ctx context.Context, tx *gorm.DB, fileID uint, ownerID uint, emails []string) error
	UpdateByIDAndOwner(ctx context.Context, tx *gorm.DB, fileID uint, ownerID uint, updates map[string]interface{}) error
	DeleteByIDAndOwner(ctx context.Context, tx *gorm.DB, fileID uint, ownerID uint) error
	ListByQueries(ctx context.Context, tx *gorm.DB, queries []Predicate) ([]models.File, int64, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) ([]models.File, error)
}

// SessionRepository maps opaque session secrets to account identities.
type SessionRepository interface {
	Create(ctx context.Context, secret string, accountID string, ttl time.Duration) error
	Resolve(ctx context.Context, secret string) (string, error)
	Delete(ctx context.Context, secret string) error
}

// OTPRepository stores hashed one-time passcodes keyed by account identity.
type OTPRepository interface {
	Save(ctx context.Context, accountID string, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, accountID string) (string, int64, error)
	IncrAttempts(ctx context.Context, accountID string) (int64, error)
	Delete(ctx context.Context, accountID string) error
}

// ViewCacheRepository drops the cached render of a logical path after a
// mutation touches it.
type ViewCacheRepository interface {
	Invalidate(ctx context.Context, path string) error
}

type Container struct {
	TxManager TxManager
	Users     UserRepository
	Files     FileRepository
	Sessions  SessionRepository
	OTPs      OTPRepository
	ViewCache ViewCacheRepository
}
