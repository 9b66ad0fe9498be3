package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"keycab-backend/internal/model"
)

// ListTransactions handles GET /api/admin/transactions: the raw audit
// trail, newest first, filterable by room code, badge code, and the
// granted flag (granted=false is the denied-access view). The rows
// serve their snapshot fields, so history reads the same after the
// referenced credential or room is deleted.
func ListTransactions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c.Request.Context()).Model(&model.Transaction{}).Order("open_time DESC")

		if room := c.Query("room"); room != "" {
			q = q.Where("room_code = ?", room)
		}
		if badge := c.Query("badge"); badge != "" {
			q = q.Where("badge_code = ?", badge)
		}
		if granted := c.Query("granted"); granted != "" {
			v, err := strconv.ParseBool(granted)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'granted' value"})
				return
			}
			q = q.Where("access_granted = ?", v)
		}

		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		var txns []model.Transaction
		if err := q.Limit(limit).Find(&txns).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
			return
		}
		c.JSON(http.StatusOK, txns)
	}
}
