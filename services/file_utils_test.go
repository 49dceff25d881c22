package services

import (
	"testing"

	"stashbox/models"
)

func TestFileTypeOf(t *testing.T) {
	cases := []struct {
		name      string
		category  models.FileCategory
		extension string
	}{
		{"photo.JPG", models.CategoryImage, "jpg"},
		{"report.pdf", models.CategoryDocument, "pdf"},
		{"clip.mp4", models.CategoryVideo, "mp4"},
		{"song.flac", models.CategoryAudio, "flac"},
		{"archive.zip", models.CategoryOther, "zip"},
		{"README", models.CategoryOther, ""},
	}

	for _, tc := range cases {
		category, extension := FileTypeOf(tc.name)
		if category != tc.category || extension != tc.extension {
			t.Fatalf("%s: got (%s, %q), want (%s, %q)", tc.name, category, extension, tc.category, tc.extension)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("../../etc/passwd"); got != "passwd" {
		t.Fatalf("expected path components to be stripped, got %q", got)
	}
	if got := sanitizeFilename("nor..mal.txt"); got != "nor_mal.txt" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestCategoriesForBucket(t *testing.T) {
	media := CategoriesForBucket("media")
	if len(media) != 2 || media[0] != models.CategoryVideo || media[1] != models.CategoryAudio {
		t.Fatalf("unexpected media categories: %v", media)
	}
	if got := CategoriesForBucket("images"); len(got) != 1 || got[0] != models.CategoryImage {
		t.Fatalf("unexpected images categories: %v", got)
	}
	if got := CategoriesForBucket("bogus"); got != nil {
		t.Fatalf("expected nil for an unknown bucket, got %v", got)
	}
}
