package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trustlens-backend/internal/platform/apierr"
)

// RespondAPIError maps a service error onto its status and code.
// Server errors never expose the underlying message.
func RespondAPIError(c *gin.Context, fallbackCode string, err error) {
	ae := apierr.From(err, fallbackCode)
	if ae == nil {
		RespondError(c, 500, fallbackCode, errors.New("unknown error"))
		return
	}
	if ae.Status >= 500 {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
