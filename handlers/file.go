package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"stashbox/logger"
	"stashbox/services"
	"stashbox/utils"

	"github.com/gin-gonic/gin"
)

type RenameFileRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
	Path string `json:"path"`
}

type ShareFileRequest struct {
	Emails []string `json:"emails"`
	Path   string   `json:"path"`
}

func viewerFromContext(c *gin.Context) services.Viewer {
	return services.Viewer{
		UserID: c.GetUint("user_id"),
		Email:  c.GetString("user_email"),
	}
}

func fileIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid file id")
		return 0, false
	}
	return uint(id), true
}

// ListFiles returns the files the viewer owns or has been granted access
// to. The type parameter names a display bucket (images, documents,
// media, others) and expands to the matching storage categories.
func ListFiles(c *gin.Context) {
	viewer := viewerFromContext(c)

	bucket := c.Query("type")
	categories := services.CategoriesForBucket(bucket)
	if bucket != "" && categories == nil {
		utils.Error(c, http.StatusBadRequest, "unknown file type: "+bucket)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.Error(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	out, err := getServices().File.List(c.Request.Context(), viewer, services.ListFilesInput{
		Categories: categories,
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
		Limit:      limit,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, out)
}

func UploadFile(c *gin.Context) {
	viewer := viewerFromContext(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	created, err := getServices().File.Upload(c.Request.Context(), viewer, services.UploadFileInput{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Path:        c.PostForm("path"),
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, created)
}

func RenameFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	file, err := getServices().File.Rename(c.Request.Context(), c.GetUint("user_id"), fileID, req.Name, req.Path)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, file)
}

func ShareFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req ShareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	file, err := getServices().File.UpdateSharedUsers(c.Request.Context(), c.GetUint("user_id"), fileID, req.Emails, req.Path)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, file)
}

func DeleteFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	err := getServices().File.Delete(c.Request.Context(), c.GetUint("user_id"), fileID, c.Query("path"))
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{"deleted": true})
}

func DownloadFile(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	file, body, err := getServices().File.GetDownloadInfo(c.Request.Context(), viewerFromContext(c), fileID)
	if respondServiceError(c, err) {
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(file.Name)))
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))

	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.Warnf("download of file %d interrupted: %v", file.ID, err)
	}
}
