package services

import (
	"path/filepath"
	"strings"

	"stashbox/models"
)

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer("..", "_", "/", "_", "\\", "_")
	return replacer.Replace(name)
}

var categoryByExtension = map[string]models.FileCategory{
	".jpg":  models.CategoryImage,
	".jpeg": models.CategoryImage,
	".png":  models.CategoryImage,
	".gif":  models.CategoryImage,
	".bmp":  models.CategoryImage,
	".webp": models.CategoryImage,
	".svg":  models.CategoryImage,

	".pdf":  models.CategoryDocument,
	".doc":  models.CategoryDocument,
	".docx": models.CategoryDocument,
	".xls":  models.CategoryDocument,
	".xlsx": models.CategoryDocument,
	".ppt":  models.CategoryDocument,
	".pptx": models.CategoryDocument,
	".txt":  models.CategoryDocument,
	".md":   models.CategoryDocument,
	".csv":  models.CategoryDocument,

	".mp4":  models.CategoryVideo,
	".mov":  models.CategoryVideo,
	".avi":  models.CategoryVideo,
	".mkv":  models.CategoryVideo,
	".webm": models.CategoryVideo,

	".mp3":  models.CategoryAudio,
	".wav":  models.CategoryAudio,
	".flac": models.CategoryAudio,
	".ogg":  models.CategoryAudio,
	".m4a":  models.CategoryAudio,
}

// FileTypeOf derives the storage category and the bare extension (no dot)
// from a filename. Anything unrecognized is "other".
func FileTypeOf(name string) (models.FileCategory, string) {
	ext := strings.ToLower(filepath.Ext(name))
	category, ok := categoryByExtension[ext]
	if !ok {
		category = models.CategoryOther
	}
	return category, strings.TrimPrefix(ext, ".")
}

var bucketCategories = map[string][]models.FileCategory{
	"images":    {models.CategoryImage},
	"documents": {models.CategoryDocument},
	"media":     {models.CategoryVideo, models.CategoryAudio},
	"others":    {models.CategoryOther},
}

// CategoriesForBucket maps a display bucket from the browsing UI to the
// fine-grained storage categories it covers. Unknown buckets map to nothing.
func CategoriesForBucket(bucket string) []models.FileCategory {
	return bucketCategories[bucket]
}
