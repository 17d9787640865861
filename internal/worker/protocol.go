package worker

import (
	"github.com/annel0/voxel-siege/internal/bake"
	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
)

// CommandType определяет тип команды воркера
type CommandType uint8

const (
	CommandPlace      CommandType = iota // Установка вокселя
	CommandRemove                        // Удаление вокселя
	CommandDamage                        // Применение урона
	CommandTick                          // Тик воркера
	CommandBakeResult                    // Возврат результата внешней перестройки
	CommandShutdown                      // Завершение цикла воркера
)

// Command представляет собой интерфейс для всех команд воркера
type Command interface {
	GetType() CommandType
}

// PlaceCommand устанавливает воксель с полным запасом прочности материала
type PlaceCommand struct {
	Coord    vec.Vec3
	Material world.MaterialID
	Normal   vec.Vec3Float // Нормаль поверхности для упаковки в ячейку
}

// GetType возвращает тип команды
func (c PlaceCommand) GetType() CommandType { return CommandPlace }

// RemoveCommand удаляет воксель, если он существует
type RemoveCommand struct {
	Coord vec.Vec3
}

// GetType возвращает тип команды
func (c RemoveCommand) GetType() CommandType { return CommandRemove }

// DamageCommand применяет урон к вокселю; синхронно порождает DamageResultEvent
type DamageCommand struct {
	Hit     world.VoxelHit
	Damage  float64
	Impulse vec.Vec3Float
	Source  world.DamageSource
}

// GetType возвращает тип команды
func (c DamageCommand) GetType() CommandType { return CommandDamage }

// TickCommand продвигает воркер на dt секунд; всегда порождает RenderEvent
type TickCommand struct {
	Dt float64
}

// GetType возвращает тип команды
func (c TickCommand) GetType() CommandType { return CommandTick }

// BakeResultCommand возвращает воркеру результат внешнего исполнителя перестройки
type BakeResultCommand struct {
	Result bake.BakeResult
}

// GetType возвращает тип команды
func (c BakeResultCommand) GetType() CommandType { return CommandBakeResult }

// ShutdownCommand завершает цикл воркера; команды после неё не обрабатываются
type ShutdownCommand struct{}

// GetType возвращает тип команды
func (c ShutdownCommand) GetType() CommandType { return CommandShutdown }

// EventType определяет тип события воркера
type EventType uint8

const (
	EventRender       EventType = iota // Пакет рендер-дельт
	EventAudio                         // Пакет звуковых триггеров
	EventDamageResult                  // Результат применения урона
	EventBakeResult                    // Результат внешней перестройки
)

// Event представляет собой интерфейс для всех событий воркера
type Event interface {
	GetType() EventType
}

// RenderDeltaBatch содержит всё, что изменилось с прошлого тика:
// грязные чанки мира и созревшие задачи перестройки оболочки.
type RenderDeltaBatch struct {
	DirtyChunks []vec.Vec3
	BakeJobs    []bake.ShellBakeJob
}

// RenderEvent доставляет пакет рендер-дельт; ровно один на каждый Tick
type RenderEvent struct {
	Batch RenderDeltaBatch
}

// GetType возвращает тип события
func (e RenderEvent) GetType() EventType { return EventRender }

// AudioBatchEvent доставляет накопленные звуковые триггеры.
// Никогда не объединяется с рендер-пакетом: аудио-потребитель обрабатывает
// события независимо от частоты рендера.
type AudioBatchEvent struct {
	Events []world.AudioEvent
}

// GetType возвращает тип события
func (e AudioBatchEvent) GetType() EventType { return EventAudio }

// DamageResultEvent доставляет результат команды Damage
type DamageResultEvent struct {
	Result world.DamageResult
}

// GetType возвращает тип события
func (e DamageResultEvent) GetType() EventType { return EventDamageResult }

// BakeResultEvent доставляет буферизованный результат перестройки потребителю
type BakeResultEvent struct {
	Result bake.BakeResult
}

// GetType возвращает тип события
func (e BakeResultEvent) GetType() EventType { return EventBakeResult }
