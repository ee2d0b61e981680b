package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// pathID reads a positive integer path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name, gin.H{"param": name, "value": raw})
		return 0, false
	}

	return id, true
}

// queryID reads an optional positive integer query parameter.
func queryID(ctx *gin.Context, name string) (*int64, bool) {
	raw, present := ctx.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name, gin.H{"param": name, "value": raw})
		return nil, false
	}

	return &id, true
}

// queryBool reads an optional boolean query parameter, false when absent.
func queryBool(ctx *gin.Context, name string) (bool, bool) {
	raw, present := ctx.GetQuery(name)
	if !present || raw == "" {
		return false, true
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		RespondBadRequest(ctx, "Invalid "+name, gin.H{"param": name, "value": raw})
		return false, false
	}

	return v, true
}

// queryString returns nil for an absent or blank parameter.
func queryString(ctx *gin.Context, name string) *string {
	v := strings.TrimSpace(ctx.Query(name))
	if v == "" {
		return nil
	}
	return &v
}
