package worker

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/annel0/voxel-siege/internal/bake"
	"github.com/annel0/voxel-siege/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

// Metrics инкапсулирует Prometheus-метрики воркера и системные показатели
// процесса. Счётчики обновляются из горутины воркера, системные gauge —
// фоновым циклом экспортера.
type Metrics struct {
	quit chan struct{}
	done chan struct{}

	commands  *prometheus.CounterVec
	placed    prometheus.Counter
	removed   prometheus.Counter
	destroyed prometheus.Counter
	bakeJobs  *prometheus.CounterVec

	occupiedVoxels prometheus.Gauge
	dirtyChunks    prometheus.Gauge
	queueDepth     prometheus.Gauge

	cpuPercent prometheus.Gauge
	heapMB     prometheus.Gauge
	goroutines prometheus.Gauge
}

// NewMetrics создаёт экспортер и регистрирует метрики в глобальном регистре.
func NewMetrics() *Metrics {
	m := &Metrics{
		quit: make(chan struct{}),
		done: make(chan struct{}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelworker",
			Name:      "commands_total",
			Help:      "Общее число обработанных команд по типам.",
		}, []string{"type"}),
		placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelworker",
			Name:      "voxels_placed_total",
			Help:      "Общее число установленных вокселей.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelworker",
			Name:      "voxels_removed_total",
			Help:      "Общее число удалённых вокселей.",
		}),
		destroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelworker",
			Name:      "voxels_destroyed_total",
			Help:      "Общее число вокселей, разрушенных уроном.",
		}),
		bakeJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelworker",
			Name:      "bake_jobs_total",
			Help:      "Созданные задачи перестройки оболочки по причинам.",
		}, []string{"reason"}),
		occupiedVoxels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "occupied_voxels",
			Help:      "Текущее количество занятых вокселей мира.",
		}),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "dirty_chunks_last_tick",
			Help:      "Количество грязных чанков, слитых на последнем тике.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "command_queue_depth",
			Help:      "Глубина очереди команд на момент последнего тика.",
		}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "process_cpu_percent",
			Help:      "Использование CPU процессом в процентах.",
		}),
		heapMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "heap_alloc_mb",
			Help:      "Выделенная куча в мегабайтах.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelworker",
			Name:      "goroutines",
			Help:      "Количество горутин процесса.",
		}),
	}

	prometheus.MustRegister(
		m.commands, m.placed, m.removed, m.destroyed, m.bakeJobs,
		m.occupiedVoxels, m.dirtyChunks, m.queueDepth,
		m.cpuPercent, m.heapMB, m.goroutines,
	)
	return m
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе
// (например, ":2112") и фоновое обновление системных gauge.
// Метод неблокирующий.
func (m *Metrics) StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go m.loop()
}

// Stop останавливает фоновое обновление системных метрик.
func (m *Metrics) Stop() {
	close(m.quit)
	<-m.done
}

// loop периодически обновляет системные gauge процесса.
func (m *Metrics) loop() {
	defer close(m.done)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	proc, procErr := process.NewProcess(int32(os.Getpid()))

	for {
		select {
		case <-m.quit:
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			m.heapMB.Set(float64(ms.HeapAlloc) / 1024 / 1024)
			m.goroutines.Set(float64(runtime.NumGoroutine()))

			if procErr == nil {
				if cpuPct, err := proc.CPUPercent(); err == nil {
					m.cpuPercent.Set(cpuPct)
				}
			}
		}
	}
}

// ObserveCommand учитывает обработанную команду
func (m *Metrics) ObserveCommand(t CommandType) {
	m.commands.WithLabelValues(commandLabel(t)).Inc()
}

// ObservePlace учитывает установку вокселя
func (m *Metrics) ObservePlace(occupied int) {
	m.placed.Inc()
	m.occupiedVoxels.Set(float64(occupied))
}

// ObserveRemove учитывает удаление вокселя
func (m *Metrics) ObserveRemove(occupied int) {
	m.removed.Inc()
	m.occupiedVoxels.Set(float64(occupied))
}

// ObserveDestroyed учитывает разрушение вокселя уроном
func (m *Metrics) ObserveDestroyed(occupied int) {
	m.destroyed.Inc()
	m.occupiedVoxels.Set(float64(occupied))
}

// ObserveTick учитывает результаты тика
func (m *Metrics) ObserveTick(dirtyChunks int, jobs []bake.ShellBakeJob, queueDepth int) {
	m.dirtyChunks.Set(float64(dirtyChunks))
	m.queueDepth.Set(float64(queueDepth))
	for _, job := range jobs {
		m.bakeJobs.WithLabelValues(job.Reason).Inc()
	}
}

func commandLabel(t CommandType) string {
	switch t {
	case CommandPlace:
		return "place"
	case CommandRemove:
		return "remove"
	case CommandDamage:
		return "damage"
	case CommandTick:
		return "tick"
	case CommandBakeResult:
		return "bake_result"
	case CommandShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
