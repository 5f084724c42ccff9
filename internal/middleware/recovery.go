package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a logged error and hands the response to onPanic.
func Recovery(onPanic gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				utils.Logger.Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", string(debug.Stack())))

				_ = c.Error(fmt.Errorf("panic: %v", r))
				c.Abort()
				onPanic(c)
			}
		}()
		c.Next()
	}
}
