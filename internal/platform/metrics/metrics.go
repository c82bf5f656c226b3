// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は貸出・返却まわりのメトリクスを収集する。
type Collector struct {
	registry     *prometheus.Registry
	borrowTotal  prometheus.Counter
	returnTotal  prometheus.Counter
	borrowDenied *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、自前のレジストリにメトリクスを登録する。
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		borrowTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_borrows_total",
			Help: "貸出成功の合計数",
		}),
		returnTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_returns_total",
			Help: "返却成功の合計数",
		}),
		borrowDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_borrow_denied_total",
			Help: "拒否された貸出要求の理由別合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}
	reg.MustRegister(c.borrowTotal, c.returnTotal, c.borrowDenied, c.httpStatus)
	return c
}

func (c *Collector) RecordBorrow()                    { c.borrowTotal.Inc() }
func (c *Collector) RecordReturn()                    { c.returnTotal.Inc() }
func (c *Collector) RecordBorrowDenied(reason string) { c.borrowDenied.WithLabelValues(reason).Inc() }

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler は /metrics 用のハンドラを返す。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware はレスポンスのステータスコードを記録するginミドルウェアを返す。
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(g *gin.Context) {
		g.Next()
		c.RecordHTTPStatus(g.Writer.Status())
	}
}
