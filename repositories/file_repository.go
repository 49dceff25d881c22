package repositories

import (
	"context"
	"strings"

	"stashbox/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

var sortColumns = map[string]string{
	"name":       "name",
	"size":       "size",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// Emails and search text are data, not patterns: % and _ must not act as
// LIKE wildcards. '!' is the escape character in every LIKE below.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func sharedWithPattern(email string) string {
	return `%"` + likeEscaper.Replace(email) + `"%`
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByIDAndOwner(_ context.Context, tx *gorm.DB, fileID uint, ownerID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Where("id = ? AND owner_id = ?", fileID, ownerID).First(&file).Error
	return file, err
}

// GetByIDForViewer returns the file if the viewer owns it or appears in
// its shared-with list.
func (r *GormFileRepository) GetByIDForViewer(_ context.Context, tx *gorm.DB, fileID uint, viewerID uint, viewerEmail string) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).
		Where("id = ? AND (owner_id = ? OR shared_with LIKE ? ESCAPE '!')", fileID, viewerID, sharedWithPattern(viewerEmail)).
		First(&file).Error
	return file, err
}

// UpdateSharedWith goes through a struct update so gorm's JSON serializer
// applies to the shared_with column.
func (r *GormFileRepository) UpdateSharedWith(_ context.Context, tx *gorm.DB, fileID uint, ownerID uint, emails []string) error {
	if emails == nil {
		emails = []string{}
	}
	res := useTx(r.db, tx).Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		Updates(models.File{SharedWith: emails})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormFileRepository) UpdateByIDAndOwner(_ context.Context, tx *gorm.DB, fileID uint, ownerID uint, updates map[string]interface{}) error {
	res := useTx(r.db, tx).Model(&models.File{}).Where("id = ? AND owner_id = ?", fileID, ownerID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormFileRepository) DeleteByIDAndOwner(_ context.Context, tx *gorm.DB, fileID uint, ownerID uint) error {
	res := useTx(r.db, tx).Where("id = ? AND owner_id = ?", fileID, ownerID).Delete(&models.File{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByQueries applies the predicate list built by the query builder and
// returns the matching rows plus the total match count (before any limit).
func (r *GormFileRepository) ListByQueries(_ context.Context, tx *gorm.DB, queries []Predicate) ([]models.File, int64, error) {
	base := useTx(r.db, tx)

	limit := 0
	orderSQL := ""
	applyFilters := func(db *gorm.DB) *gorm.DB {
		for _, q := range queries {
			switch q.Kind {
			case PredicateOwnership:
				db = db.Where("owner_id = ? OR shared_with LIKE ? ESCAPE '!'", q.OwnerID, sharedWithPattern(q.OwnerEmail))
			case PredicateCategoryIn:
				db = db.Where("category IN ?", q.Categories)
			case PredicateNameContains:
				db = db.Where("name LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(q.Search)+"%")
			}
		}
		return db
	}
	for _, q := range queries {
		switch q.Kind {
		case PredicateLimit:
			limit = q.Limit
		case PredicateOrder:
			col := sortColumns[q.OrderField]
			if col == "" {
				col = "created_at"
			}
			dir := "ASC"
			if q.Descending {
				dir = "DESC"
			}
			orderSQL = col + " " + dir
		}
	}

	var total int64
	if err := applyFilters(base.Model(&models.File{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilters(base.Model(&models.File{}))
	if orderSQL != "" {
		query = query.Order(orderSQL)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var files []models.File
	if err := query.Find(&files).Error; err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *GormFileRepository) ListByOwner(_ context.Context, tx *gorm.DB, ownerID uint) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Where("owner_id = ?", ownerID).Find(&files).Error
	return files, err
}
