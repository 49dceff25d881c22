package services

import (
	"context"
	"net/http"
	"time"

	"stashbox/logger"
	"stashbox/models"
	"stashbox/repositories"
)

// QuotaAllBytes is the fixed per-user capacity: 2 GiB.
const QuotaAllBytes int64 = 2 * 1024 * 1024 * 1024

type CategoryUsage struct {
	Size       int64     `json:"size"`
	LatestDate time.Time `json:"latest_date,omitzero"`
}

type QuotaSummaryOutput struct {
	Image    CategoryUsage `json:"image"`
	Document CategoryUsage `json:"document"`
	Video    CategoryUsage `json:"video"`
	Audio    CategoryUsage `json:"audio"`
	Other    CategoryUsage `json:"other"`
	Used     int64         `json:"used"`
	All      int64         `json:"all"`
	Skipped  int           `json:"skipped,omitempty"`
}

type BucketUsage struct {
	Size        int64     `json:"size"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
}

type CategorySummaryOutput struct {
	Images    BucketUsage `json:"images"`
	Documents BucketUsage `json:"documents"`
	Media     BucketUsage `json:"media"`
	Others    BucketUsage `json:"others"`
	Skipped   int         `json:"skipped,omitempty"`
}

type UsageService interface {
	QuotaSummary(ctx context.Context, userID uint) (QuotaSummaryOutput, error)
	CategorySummary(ctx context.Context, userID uint) (CategorySummaryOutput, error)
}

type usageService struct {
	files repositories.FileRepository
}

func NewUsageService(files repositories.FileRepository) UsageService {
	return &usageService{files: files}
}

func (s *usageService) QuotaSummary(ctx context.Context, userID uint) (QuotaSummaryOutput, error) {
	files, err := s.files.ListByOwner(ctx, nil, userID)
	if err != nil {
		return QuotaSummaryOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to list files", err)
	}
	out := summarizeQuota(files)
	if out.Skipped > 0 {
		logger.Warnf("quota summary for user %d skipped %d records with unknown category", userID, out.Skipped)
	}
	return out, nil
}

func (s *usageService) CategorySummary(ctx context.Context, userID uint) (CategorySummaryOutput, error) {
	files, err := s.files.ListByOwner(ctx, nil, userID)
	if err != nil {
		return CategorySummaryOutput{}, newAppError(http.StatusInternalServerError, KindUpstream, "failed to list files", err)
	}
	out := summarizeCategories(files)
	if out.Skipped > 0 {
		logger.Warnf("category summary for user %d skipped %d records with unknown category", userID, out.Skipped)
	}
	return out, nil
}

func accumulate(slot *CategoryUsage, size int64, updatedAt time.Time) {
	slot.Size += size
	if slot.LatestDate.IsZero() || updatedAt.After(slot.LatestDate) {
		slot.LatestDate = updatedAt
	}
}

// summarizeQuota folds the full unfiltered file set into per-category
// byte totals in a single pass. Records with an unknown category are
// skipped, never fatal.
func summarizeQuota(files []models.File) QuotaSummaryOutput {
	out := QuotaSummaryOutput{All: QuotaAllBytes}
	slots := map[models.FileCategory]*CategoryUsage{
		models.CategoryImage:    &out.Image,
		models.CategoryDocument: &out.Document,
		models.CategoryVideo:    &out.Video,
		models.CategoryAudio:    &out.Audio,
		models.CategoryOther:    &out.Other,
	}

	for _, f := range files {
		slot, ok := slots[f.Category]
		if !ok {
			out.Skipped++
			continue
		}
		accumulate(slot, f.Size, f.UpdatedAt)
		out.Used += f.Size
	}
	return out
}

// summarizeCategories is the same fold with fine-grained categories
// mapped onto the four display buckets (video and audio share "media").
func summarizeCategories(files []models.File) CategorySummaryOutput {
	var out CategorySummaryOutput
	slots := map[models.FileCategory]*BucketUsage{
		models.CategoryImage:    &out.Images,
		models.CategoryDocument: &out.Documents,
		models.CategoryVideo:    &out.Media,
		models.CategoryAudio:    &out.Media,
		models.CategoryOther:    &out.Others,
	}

	for _, f := range files {
		slot, ok := slots[f.Category]
		if !ok {
			out.Skipped++
			continue
		}
		slot.Size += f.Size
		if slot.LastUpdated.IsZero() || f.UpdatedAt.After(slot.LastUpdated) {
			slot.LastUpdated = f.UpdatedAt
		}
	}
	return out
}
