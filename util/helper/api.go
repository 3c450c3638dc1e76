package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetLimitParam(c *gin.Context, fallback int) (int, error) {
	raw := c.DefaultQuery("limit", strconv.Itoa(fallback))
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return limit, nil
}
