package handlers

import (
	"stashbox/utils"

	"github.com/gin-gonic/gin"
)

// GetQuotaSummary reports per-category byte usage against the fixed
// per-user capacity.
func GetQuotaSummary(c *gin.Context) {
	out, err := getServices().Usage.QuotaSummary(c.Request.Context(), c.GetUint("user_id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

// GetCategorySummary reports usage grouped by display bucket.
func GetCategorySummary(c *gin.Context) {
	out, err := getServices().Usage.CategorySummary(c.Request.Context(), c.GetUint("user_id"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}
