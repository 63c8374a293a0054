package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bizdesk/internal/apperror"
	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
	"github.com/mamadbah2/bizdesk/internal/server/middleware"
)

// respond writes a read result in the success envelope.
func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// fail hands err to the central error responder.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return false
	}
	return true
}

func callerOf(c *gin.Context) (models.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		fail(c, apperror.Unauthorized("Not authenticated"))
	}
	return caller, ok
}

func filterOf(c *gin.Context) (models.Filter, bool) {
	filter, err := query.ParseFilter(c.Query("search"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		fail(c, err)
		return models.Filter{}, false
	}
	return filter, true
}
