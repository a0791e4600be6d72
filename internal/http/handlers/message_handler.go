// Chat history HTTP handler.
//
// GET /messages pages through persisted chat messages oldest-first. New
// realtime connections are never replayed history; clients that want it ask
// here explicitly.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/domain"
	"github.com/tbourn/game-catalog-backend/internal/utils"
)

// ListMessagesResponse contains a page of chat messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Chat history
// @Description Returns persisted chat messages oldest-first. Supports weak ETag via If-None-Match.
// @Tags        Chat
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListMessagesResponse
// @Success     304  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := utils.ClampPage(c.Query("page"), c.Query("page_size"))

	// ETag pre-check (best effort). Paging params are part of the tag.
	if count, latest, err := h.history.Stats(ctx); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		if notModified(c, fmt.Sprintf(`W/"messages:%d:%d:%d:%d"`, page, pageSize, count, ts)) {
			return
		}
	}

	items, total, err := h.history.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
