package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/theoprice/internal/theoprice/application"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/response"
)

const maxBatchSize = 10000

// TheoPriceHandler 理论价 HTTP 处理器
type TheoPriceHandler struct {
	pricing   *application.TheoPriceService
	reconcile *application.ReconciliationService // 未配置输入库时为 nil
}

// NewTheoPriceHandler 创建 HTTP 处理器实例
func NewTheoPriceHandler(pricing *application.TheoPriceService, reconcile *application.ReconciliationService) *TheoPriceHandler {
	return &TheoPriceHandler{pricing: pricing, reconcile: reconcile}
}

// RegisterRoutes 注册路由，reconcileMiddleware 只作用于比对接口
func (h *TheoPriceHandler) RegisterRoutes(router *gin.Engine, reconcileMiddleware ...gin.HandlerFunc) {
	api := router.Group("/api/v1/theoprice")
	{
		api.POST("/price", h.Price)
		api.POST("/batch", h.PriceBatch)
		api.POST("/classify", h.Classify)
		api.POST("/rates/implied", h.ImpliedRate)
		api.POST("/rates/interpolate", h.InterpolateRate)
		api.POST("/reconcile", append(reconcileMiddleware, h.Reconcile)...)
	}
}

// Price 计算单条理论价
func (h *TheoPriceHandler) Price(c *gin.Context) {
	var cmd application.PriceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	res, err := h.pricing.Price(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

type batchRequest struct {
	Records []application.PriceCommand `json:"records"`
}

// PriceBatch 批量计算，单条无效不影响其他记录
func (h *TheoPriceHandler) PriceBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Records) > maxBatchSize {
		response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, "too many records", "")
		return
	}
	res, err := h.pricing.PriceBatch(c.Request.Context(), req.Records)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// Classify 商品分类 → 附表
func (h *TheoPriceHandler) Classify(c *gin.Context) {
	var cmd application.ClassifyCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	response.Success(c, h.pricing.Classify(c.Request.Context(), cmd))
}

// ImpliedRate 掉期点 → 国内利率
func (h *TheoPriceHandler) ImpliedRate(c *gin.Context) {
	var cmd application.ImpliedRateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	res, err := h.pricing.ImpliedDomesticRate(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// InterpolateRate 期限结构插值
func (h *TheoPriceHandler) InterpolateRate(c *gin.Context) {
	var cmd application.InterpolateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	res, err := h.pricing.InterpolateRate(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}

// reconcileRequest 日期为 YYYYMMDD，区间最多 application.MaxReconcileDays 天
type reconcileRequest struct {
	From string `json:"from" binding:"required,len=8,numeric"`
	To   string `json:"to" binding:"required,len=8,numeric"`
}

// Reconcile 对区间内的输入重算并与交易所理论价比对
func (h *TheoPriceHandler) Reconcile(c *gin.Context) {
	if h.reconcile == nil {
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, "reconciliation is not configured", "")
		return
	}
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	from, err := application.ParseDate(req.From)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}
	to, err := application.ParseDate(req.To)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}

	report, err := h.reconcile.Run(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, report)
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, "invalid input", err.Error())
		return
	}
	logger.Error(c.Request.Context(), "theoprice request failed", "path", c.FullPath(), "error", err)
	response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "")
}
