package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager exposes the service's counters.
type Manager struct {
	AccessDecisions *prometheus.CounterVec
	PresignedURLs   *prometheus.CounterVec
	ScanCallbacks   *prometheus.CounterVec
	AuditWrites     *prometheus.CounterVec
}

func NewManager() *Manager {
	return &Manager{
		AccessDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_access_decisions_total",
			Help: "Access decisions by action and outcome.",
		}, []string{"action", "outcome"}),
		PresignedURLs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_presigned_urls_total",
			Help: "Presigned URLs issued by method.",
		}, []string{"method"}),
		ScanCallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_scan_callbacks_total",
			Help: "Virus scan callbacks by status.",
		}, []string{"status"}),
		AuditWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dataroom_audit_writes_total",
			Help: "Audit trail writes by result.",
		}, []string{"result"}),
	}
}

func GetHandler(router *gin.RouterGroup) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
