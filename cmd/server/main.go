package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-siege/internal/bake"
	"github.com/annel0/voxel-siege/internal/brick"
	"github.com/annel0/voxel-siege/internal/config"
	"github.com/annel0/voxel-siege/internal/eventbus"
	"github.com/annel0/voxel-siege/internal/logging"
	"github.com/annel0/voxel-siege/internal/physics"
	gamesync "github.com/annel0/voxel-siege/internal/sync"
	"github.com/annel0/voxel-siege/internal/util"
	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/worker"
	"github.com/annel0/voxel-siege/internal/world"
)

const (
	tickInterval = 50 * time.Millisecond
	fireEvery    = 8 // выстрел раз в N тиков
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или ENV VOXEL_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🧱 Запуск Voxel Siege: осадный воксельный мир...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{} // все значения из fallback'ов
		logging.Info("📡 Конфигурация не задана, используются значения по умолчанию")
	}

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	logging.Info("📡 Конфигурация: metrics=%s, command_buffer=%d, full_bake=%.1fс",
		metricsAddr, cfg.Worker.GetCommandBuffer(), cfg.Bake.GetFullInterval())

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		retention := time.Duration(cfg.EventBus.GetRetentionHours()) * time.Hour
		jsBus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.GetStream(), retention)
		if err != nil {
			logging.Error("❌ Ошибка подключения к NATS: %v", err)
			log.Fatalf("❌ Ошибка подключения к NATS: %v", err)
		}
		bus = jsBus
		logging.Info("✅ Шина событий: JetStream %s (stream=%s)", cfg.EventBus.URL, cfg.EventBus.GetStream())
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("✅ Шина событий: in-memory")
	}
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("LoggingListener не запущен: %v", err)
	}

	// === СИНХРОНИЗАЦИЯ РЕНДЕР-ДЕЛЬТ ===
	syncMgr, err := gamesync.NewSyncManager(gamesync.SyncConfig{
		NodeID:     "siege-node-1",
		Bus:        bus,
		BatchSize:  cfg.Sync.GetBatchSize(),
		FlushEvery: time.Duration(cfg.Sync.GetFlushEveryMs()) * time.Millisecond,
		UseZstd:    cfg.Sync.UseZstdCompr,
	})
	if err != nil {
		logging.Error("❌ Ошибка инициализации SyncManager: %v", err)
		log.Fatalf("❌ Ошибка инициализации SyncManager: %v", err)
	}

	// === МЕТРИКИ ===
	metrics := worker.NewMetrics()
	metrics.StartHTTP(metricsAddr)

	// Статистика шины попадает в тот же /metrics через глобальный регистр
	busMetrics := eventbus.NewMetricsExporter(bus)
	busMetrics.Start()

	// === ВОРКЕР ===
	w := worker.NewWorker(cfg.Worker.GetCommandBuffer(), cfg.Worker.GetEventBuffer())
	w.SetMetrics(metrics)
	w.SetScheduler(newSchedulerFromConfig(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	logging.Info("✅ Воркер воксельного мира запущен")

	// === ДЕМО-СЦЕНА ===
	// Теневая копия мира на стороне игровой логики: она получает те же
	// правки, что отправляются воркеру, и служит снапшотом для анализа
	// связности и физики кластеров.
	shadow := world.NewVoxelWorld()
	built := buildFortress(w, shadow, 42)
	logging.Info("🏰 Крепость построена: %d вокселей", built)

	clusterPhysics := physics.NewClusterPhysicsWithParams(
		cfg.Physics.GetGravity(), cfg.Physics.GetSettleCeiling(), cfg.Physics.GetInitialLift())

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Info("✅ Все сервисы запущены, начинается бомбардировка")
	runSiege(ctx, w, shadow, clusterPhysics, sigCh)

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Завершение работы...")
	w.Submit(worker.ShutdownCommand{})
	w.Join()
	syncMgr.Stop()
	busMetrics.Stop()
	metrics.Stop()
	logging.Info("👋 Voxel Siege остановлен")
}

// newSchedulerFromConfig собирает планировщик перестроек из конфигурации.
func newSchedulerFromConfig(cfg *config.Config) *bake.ShellBakeScheduler {
	return bake.NewShellBakeSchedulerWithParams(cfg.Bake.GetFullInterval(), cfg.Bake.GetDirtyMargin())
}

// buildFortress засеивает мир крепостью: стены по периметру с высотой из
// шума Перлина и каменное основание. Правки зеркалируются в теневой мир.
func buildFortress(w *worker.Worker, shadow *world.VoxelWorld, seed int64) int {
	const size = 24
	up := vec.Vec3Float{X: 0, Y: 1, Z: 0}
	count := 0

	place := func(coord vec.Vec3, mat world.MaterialID) {
		w.Submit(worker.PlaceCommand{Coord: coord, Material: mat, Normal: up})
		shadow.Place(coord, world.NewCell(mat, up))
		count++
	}

	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			onWall := x == 0 || z == 0 || x == size-1 || z == size-1
			// основание на уровне земли
			place(vec.Vec3{X: x, Y: 0, Z: z}, world.MatStone)
			if !onWall {
				continue
			}
			noise := util.PerlinNoise2D(float64(x)/8.0, float64(z)/8.0, seed)
			height := 3 + int(noise*5)
			for y := 1; y <= height; y++ {
				mat := world.MatBrick
				if y == height {
					mat = world.MatWood // деревянные зубцы
				}
				place(vec.Vec3{X: x, Y: y, Z: z}, mat)
			}
		}
	}
	return count
}

// pendingHit хранит координату выстрела до прихода результата урона.
// Результаты приходят строго в порядке отправки команд Damage.
type pendingHit struct {
	coord vec.Vec3
}

// runSiege гоняет игровой цикл: тики воркера, обстрел, анализ связности
// и физика кластеров на теневом мире. Выходит по сигналу ОС.
func runSiege(ctx context.Context, w *worker.Worker, shadow *world.VoxelWorld,
	clusterPhysics *physics.ClusterPhysics, sigCh chan os.Signal) {

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var pending []pendingHit
	var audio world.AudioBuffer
	dt := tickInterval.Seconds()
	tickNo := 0

	for {
		select {
		case <-sigCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		tickNo++

		// Периодический выстрел по случайному вокселю крепости
		if tickNo%fireEvery == 0 {
			if target, ok := randomTarget(shadow, rng); ok {
				hit := world.VoxelHit{
					Coord:  target,
					Point:  world.WorldCenter(target),
					Normal: vec.Vec3Float{X: 0, Y: 1, Z: 0},
				}
				w.Submit(worker.DamageCommand{
					Hit:     hit,
					Damage:  35,
					Impulse: vec.Vec3Float{X: 0, Y: -1, Z: 0},
					Source:  world.SourceCannonball,
				})
				pending = append(pending, pendingHit{coord: target})
			}
		}

		w.Submit(worker.TickCommand{Dt: dt})

		// Небольшая пауза, чтобы воркер успел обработать очередь
		time.Sleep(2 * time.Millisecond)

		drainEvents(ctx, w, shadow, clusterPhysics, &pending, &audio)

		// Физика отсоединённых кластеров на стороне игровой логики
		clusterPhysics.Tick(dt, &audio)
		for _, ev := range audio.Drain() {
			logging.Debug("🔊 %s @ (%.1f, %.1f, %.1f)", ev.Kind, ev.WorldPos.X, ev.WorldPos.Y, ev.WorldPos.Z)
		}
	}
}

// drainEvents опустошает канал событий воркера: зеркалит разрушения в
// теневой мир, запускает анализ связности и публикует события на шину.
func drainEvents(ctx context.Context, w *worker.Worker, shadow *world.VoxelWorld,
	clusterPhysics *physics.ClusterPhysics,
	pending *[]pendingHit, audio *world.AudioBuffer) {

	for {
		ev, ok := w.PollEvent()
		if !ok {
			return
		}
		if err := eventbus.PublishWorkerEvent(ctx, ev); err != nil {
			logging.Warn("Публикация события на шину: %v", err)
		}

		// Роль внешнего исполнителя перестроек: по созревшим задачам
		// пересобираем brick-дерево из теневого снапшота и возвращаем
		// результат воркеру.
		if render, isRender := ev.(worker.RenderEvent); isRender && len(render.Batch.BakeJobs) > 0 {
			tree := brick.RebuildFromSnapshot(shadow.SnapshotCells())
			payload, err := json.Marshal(map[string]int{
				"nodes":  len(tree.Nodes),
				"leaves": len(tree.Leaves),
				"voxels": tree.VoxelCount(),
			})
			if err == nil {
				w.Submit(worker.BakeResultCommand{Result: bake.BakeResult{Payload: payload}})
			}
			continue
		}

		result, isDamage := ev.(worker.DamageResultEvent)
		if !isDamage || len(*pending) == 0 {
			continue
		}
		hit := (*pending)[0]
		*pending = (*pending)[1:]

		if !result.Result.Destroyed {
			// Теневая копия повторяет урон, чтобы HP не расходились
			if cell := shadow.GetMut(hit.coord); cell != nil {
				cell.HP = result.Result.RemainingHP
				shadow.MarkMutated(hit.coord)
			}
			continue
		}

		shadow.Remove(hit.coord)
		logging.Info("💥 Воксель разрушен: (%d, %d, %d)", hit.coord.X, hit.coord.Y, hit.coord.Z)

		// Разрушение могло отсечь часть конструкции от земли
		components := world.DisconnectedComponents(shadow)
		if len(components) == 0 {
			continue
		}
		spawned := clusterPhysics.SpawnComponents(shadow, components, audio)
		logging.Info("🧩 Отсоединилось кластеров: %d", spawned)

		// Воркер должен увидеть те же удаления
		for _, comp := range components {
			for _, coord := range comp {
				w.Submit(worker.RemoveCommand{Coord: coord})
			}
		}
	}
}

// randomTarget выбирает случайный занятый воксель выше уровня земли.
func randomTarget(shadow *world.VoxelWorld, rng *rand.Rand) (vec.Vec3, bool) {
	coords := shadow.OccupiedCoords()
	if len(coords) == 0 {
		return vec.Vec3{}, false
	}
	// до 8 попыток найти воксель над землёй
	for i := 0; i < 8; i++ {
		c := coords[rng.Intn(len(coords))]
		if c.Y > world.GroundLevel {
			return c, true
		}
	}
	return coords[rng.Intn(len(coords))], true
}
