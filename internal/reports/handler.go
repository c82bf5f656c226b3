package reports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/reports", h.FullReport)
	r.GET("/reports/overdue", h.Overdue)
	r.GET("/reports/most-borrowed", h.MostBorrowed)
	r.GET("/reports/history", h.History)
}

// GET /reports
func (h *Handler) FullReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Full(c.Request.Context()))
}

// GET /reports/overdue
func (h *Handler) Overdue(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Overdue(c.Request.Context()))
}

// GET /reports/most-borrowed?limit=
func (h *Handler) MostBorrowed(c *gin.Context) {
	limit := DefaultMostBorrowedLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.svc.MostBorrowed(c.Request.Context(), limit))
}

// GET /reports/history?user_id=
func (h *Handler) History(c *gin.Context) {
	var userID *int
	if v := c.Query("user_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "user_id must be a positive integer"))
			return
		}
		userID = &n
	}
	res, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func apiErr(code Code, msg string) gin.H {
	return gin.H{"code": code, "message": msg}
}

func apiErrFrom(err error) gin.H {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
