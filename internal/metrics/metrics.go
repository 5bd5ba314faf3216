package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions считает решения шлюза доступа по операции и исходу
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_access_decisions_total",
			Help: "Total number of access gate decisions",
		},
		[]string{"operation", "decision"},
	)

	// ImageCacheLookups считает обращения к кешу изображений: hit, miss, error
	ImageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoshare_image_cache_lookups_total",
			Help: "Total number of image snapshot cache lookups",
		},
		[]string{"result"},
	)

	ImageCacheRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoshare_image_cache_refresh_errors_total",
			Help: "Total number of failed image snapshot refreshes after commit",
		},
	)

	TagCapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoshare_tag_capacity_rejections_total",
			Help: "Total number of tag attachments rejected by the per-image cap",
		},
	)
)

func RecordAccessDecision(operation string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AccessDecisions.WithLabelValues(operation, decision).Inc()
}

func RecordCacheLookup(result string) {
	ImageCacheLookups.WithLabelValues(result).Inc()
}

// HTTPRequests считает HTTP-запросы по шаблону маршрута и статусу
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "photoshare_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

func RecordHTTPRequest(method, route string, status int) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
