// Package worker содержит выделенный контекст исполнения воксельного мира.
// Ровно одна горутина монопольно владеет VoxelWorld и планировщиком
// перестроек; весь внешний доступ сериализуется через упорядоченный канал
// команд, ответы публикуются в отдельный канал событий.
package worker

import (
	"context"

	"github.com/annel0/voxel-siege/internal/bake"
	"github.com/annel0/voxel-siege/internal/logging"
	"github.com/annel0/voxel-siege/internal/world"
)

// Worker владеет воксельным миром на выделенной горутине.
//
// Гарантии упорядочивания: команды обрабатываются строго в порядке отправки;
// Tick наблюдает все мутации команд, отправленных до него, и ни одной после.
// События публикуются в порядке возникновения.
type Worker struct {
	world     *world.VoxelWorld
	scheduler *bake.ShellBakeScheduler
	audio     world.AudioBuffer

	commands chan Command
	events   chan Event
	done     chan struct{}

	metrics *Metrics // nil, если метрики не подключены
}

// NewWorker создаёт воркер с указанными ёмкостями каналов.
// Каналы буферизованы с запасом: отправка команд на практике не блокирует.
func NewWorker(commandBuffer, eventBuffer int) *Worker {
	if commandBuffer <= 0 {
		commandBuffer = 4096
	}
	if eventBuffer <= 0 {
		eventBuffer = 4096
	}
	return &Worker{
		world:     world.NewVoxelWorld(),
		scheduler: bake.NewShellBakeScheduler(),
		commands:  make(chan Command, commandBuffer),
		events:    make(chan Event, eventBuffer),
		done:      make(chan struct{}),
	}
}

// SetScheduler заменяет планировщик перестроек (до запуска воркера).
func (w *Worker) SetScheduler(s *bake.ShellBakeScheduler) {
	w.scheduler = s
}

// SetMetrics подключает экспортер метрик (до запуска воркера).
func (w *Worker) SetMetrics(m *Metrics) {
	w.metrics = m
}

// Start запускает цикл обработки в отдельной горутине
func (w *Worker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run выполняет цикл обработки команд до Shutdown, закрытия канала команд
// или отмены контекста. Единственная точка блокировки воркера — ожидание
// следующей команды.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			// Отмена контекста эквивалентна Shutdown: исчез владелец ручки
			logging.Debug("Воркер: контекст отменён, завершаем цикл")
			return
		case cmd, ok := <-w.commands:
			if !ok {
				// Закрытый канал команд трактуется как Shutdown
				logging.Debug("Воркер: канал команд закрыт, завершаем цикл")
				return
			}
			if w.handleCommand(cmd) {
				logging.Debug("Воркер: получен Shutdown, завершаем цикл")
				return
			}
		}
	}
}

// Submit ставит команду в очередь воркера (fire-and-forget).
func (w *Worker) Submit(cmd Command) {
	w.commands <- cmd
}

// Close закрывает канал команд; воркер завершится, обработав очередь.
func (w *Worker) Close() {
	close(w.commands)
}

// Join блокируется до полного завершения цикла воркера
func (w *Worker) Join() {
	<-w.done
}

// PollEvent неблокирующе извлекает одно событие (false, если событий нет).
func (w *Worker) PollEvent() (Event, bool) {
	select {
	case ev := <-w.events:
		return ev, true
	default:
		return nil, false
	}
}

// handleCommand обрабатывает одну команду; true означает Shutdown.
func (w *Worker) handleCommand(cmd Command) bool {
	if w.metrics != nil {
		w.metrics.ObserveCommand(cmd.GetType())
	}

	switch c := cmd.(type) {
	case PlaceCommand:
		w.handlePlace(c)
	case RemoveCommand:
		w.handleRemove(c)
	case DamageCommand:
		w.handleDamage(c)
	case TickCommand:
		w.handleTick(c)
	case BakeResultCommand:
		w.scheduler.PushResult(c.Result)
	case ShutdownCommand:
		return true
	default:
		logging.Warn("Воркер: неизвестный тип команды: %T", cmd)
	}
	return false
}

func (w *Worker) handlePlace(c PlaceCommand) {
	w.world.Place(c.Coord, world.NewCell(c.Material, c.Normal))
	w.scheduler.MarkVoxelDirty(c.Coord)
	if w.metrics != nil {
		w.metrics.ObservePlace(w.world.Len())
	}
}

func (w *Worker) handleRemove(c RemoveCommand) {
	if _, removed := w.world.Remove(c.Coord); removed {
		w.scheduler.MarkVoxelDirty(c.Coord)
		if w.metrics != nil {
			w.metrics.ObserveRemove(w.world.Len())
		}
	}
}

func (w *Worker) handleDamage(c DamageCommand) {
	result := world.ApplyDamageAtHit(w.world, c.Hit, c.Damage, c.Impulse, c.Source, &w.audio)

	// Координата была занята, если что-то изменилось
	if result.Destroyed || result.RemainingHP > 0 {
		w.scheduler.MarkVoxelDirty(c.Hit.Coord)
	}
	if w.metrics != nil && result.Destroyed {
		w.metrics.ObserveDestroyed(w.world.Len())
	}

	w.publish(DamageResultEvent{Result: result})
}

// handleTick сливает грязные чанки и созревшие задачи перестройки в один
// рендер-пакет, отдельно сбрасывает накопленное аудио и буферизованные
// результаты перестроек.
func (w *Worker) handleTick(c TickCommand) {
	jobs := w.scheduler.Tick(c.Dt)
	batch := RenderDeltaBatch{
		DirtyChunks: w.world.DrainDirtyChunks(),
		BakeJobs:    jobs,
	}
	w.publish(RenderEvent{Batch: batch})

	if audio := w.audio.Drain(); len(audio) > 0 {
		w.publish(AudioBatchEvent{Events: audio})
	}

	for _, result := range w.scheduler.DrainResults() {
		w.publish(BakeResultEvent{Result: result})
	}

	if w.metrics != nil {
		w.metrics.ObserveTick(len(batch.DirtyChunks), jobs, len(w.commands))
	}
}

// publish отправляет событие потребителю. Канал буферизован; блокировка
// возможна только если потребитель перестал опрашивать события.
func (w *Worker) publish(ev Event) {
	w.events <- ev
}
