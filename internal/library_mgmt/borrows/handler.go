package borrows

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 1. 貸出リソース
	r.POST("/borrows", h.CreateBorrow)
	r.GET("/borrows", h.ListBorrowed)
	r.GET("/borrows/user/:user_id", h.TrackUser)

	// 2. 返却リソース（独立）
	r.POST("/returns", h.CreateReturn)

	// 3. 蔵書起点の在庫照会
	r.GET("/books/:book_id/availability", h.CheckAvailability)
}

// POST /borrows
func (h *Handler) CreateBorrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Borrow(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/borrows/"+strconv.Itoa(res.BorrowID))
	c.JSON(http.StatusCreated, res)
}

// POST /returns
func (h *Handler) CreateReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Return(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /borrows
func (h *Handler) ListBorrowed(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListActive(c.Request.Context()))
}

// GET /borrows/user/:user_id
func (h *Handler) TrackUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID < 1 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "user_id must be a positive integer"))
		return
	}
	res, err := h.svc.Track(c.Request.Context(), userID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /books/:book_id/availability
func (h *Handler) CheckAvailability(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("book_id"))
	if err != nil || bookID < 1 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "book_id must be a positive integer"))
		return
	}
	res, err := h.svc.CheckAvailability(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func errorBody(code Code, msg string) gin.H {
	return gin.H{"code": code, "message": msg}
}

func errorFromErr(err error) gin.H {
	if api, ok := err.(*APIError); ok {
		return errorBody(api.Code, api.Message)
	}
	return errorBody(CodeInternal, err.Error())
}
