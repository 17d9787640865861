package eventbus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переливает Stats шины в Prometheus-метрики.
// Экспортер не делает предположений о конкретной реализации шины –
// он опирается исключительно на интерфейс EventBus.Metrics().
// HTTP-эндпоинт не поднимается: метрики регистрируются в глобальном
// регистре и отдаются через /metrics воркера.
type MetricsExporter struct {
	bus  EventBus
	quit chan struct{}
	done chan struct{}
	prev Stats
	// Prometheus metrics
	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер, но не запускает цикл обновления.
func NewMetricsExporter(bus EventBus) *MetricsExporter {
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за ошибок или ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений, находящихся в очереди (не доставленных).",
		}),
	}

	// Регистрируем метрики в глобальном регистре Prometheus.
	prometheus.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Start запускает периодическое обновление метрик в отдельной горутине.
func (m *MetricsExporter) Start() {
	go m.loop()
}

// Stop останавливает обновление метрик.
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case <-ticker.C:
			m.update()
		case <-m.quit:
			return
		}
	}
}

// update снимает текущую статистику шины и переносит приращение в counters.
func (m *MetricsExporter) update() {
	stats := m.bus.Metrics()

	deltaPub := stats.Published - m.prev.Published
	deltaCons := stats.Consumed - m.prev.Consumed
	deltaDrop := stats.Dropped - m.prev.Dropped

	if deltaPub > 0 {
		m.published.Add(float64(deltaPub))
	}
	if deltaCons > 0 {
		m.consumed.Add(float64(deltaCons))
	}
	if deltaDrop > 0 {
		m.dropped.Add(float64(deltaDrop))
	}

	m.inflight.Set(float64(stats.InFlight))

	m.prev = stats
}
