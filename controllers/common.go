package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/defis-ete/backend/middleware"
	"github.com/defis-ete/backend/models"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUserRole(ctx *gin.Context) models.UserRole {
	value, exists := ctx.Get(middleware.ContextUserRoleKey)
	if !exists {
		return ""
	}
	role, _ := value.(models.UserRole)
	return role
}

// actor builds the minimal user identity the authorization helpers need from
// the request context.
func actor(ctx *gin.Context) (*models.User, bool) {
	id, ok := getUserID(ctx)
	if !ok {
		return nil, false
	}
	return &models.User{ID: id, Role: getUserRole(ctx)}, true
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}
