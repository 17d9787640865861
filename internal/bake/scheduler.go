// Package bake решает, когда и какие области мира требуют перестройки
// рендер-оболочки: локальная инкрементальная правка по накопленному грязному
// объёму либо периодическая полная консолидация по таймеру.
package bake

import (
	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
)

const (
	// DefaultFullInterval период полной консолидации (сек)
	DefaultFullInterval = 10.0
	// DefaultDirtyMargin запас вокруг грязного вокселя под нормали/сглаживание
	DefaultDirtyMargin = 0.05
	// fullBakeExtent полуразмер коробки полной консолидации; заведомо
	// покрывает весь мир
	fullBakeExtent = 1 << 22
)

// Причины постановки задачи перестройки
const (
	ReasonLocalDirty        = "local_dirty"
	ReasonFullConsolidation = "full_consolidation"
)

// Приоритеты задач (меньше — срочнее/локальнее)
const (
	PriorityFull  = 1
	PriorityLocal = 3
)

// AABB мировой осевой ограничивающий объём
type AABB struct {
	Min vec.Vec3Float
	Max vec.Vec3Float
}

// Expand расширяет объём до включения другого объёма
func (b *AABB) Expand(other AABB) {
	if other.Min.X < b.Min.X {
		b.Min.X = other.Min.X
	}
	if other.Min.Y < b.Min.Y {
		b.Min.Y = other.Min.Y
	}
	if other.Min.Z < b.Min.Z {
		b.Min.Z = other.Min.Z
	}
	if other.Max.X > b.Max.X {
		b.Max.X = other.Max.X
	}
	if other.Max.Y > b.Max.Y {
		b.Max.Y = other.Max.Y
	}
	if other.Max.Z > b.Max.Z {
		b.Max.Z = other.Max.Z
	}
}

// Contains проверяет, лежит ли точка внутри объёма
func (b AABB) Contains(p vec.Vec3Float) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ShellBakeJob описывает одну ожидающую перестройку оболочки
type ShellBakeJob struct {
	Bounds   AABB   // Перестраиваемая область в мировых координатах
	Priority int    // Меньше — срочнее
	Reason   string // local_dirty | full_consolidation
}

// BakeResult непрозрачный результат, произведённый внешним исполнителем
// перестройки и возвращённый в планировщик.
type BakeResult struct {
	Payload []byte
}

// ShellBakeScheduler накапливает грязный объём и ведёт таймер полной
// консолидации. Принадлежит воркеру; внутренних блокировок нет.
type ShellBakeScheduler struct {
	pendingDirty *AABB   // Накопленный локальный грязный объём (nil — чисто)
	fullInterval float64 // Период полной консолидации
	fullTimer    float64 // Остаток до следующей полной консолидации
	dirtyMargin  float64 // Запас вокруг вокселя
	results      []BakeResult
}

// NewShellBakeScheduler создаёт планировщик с дефолтными параметрами
func NewShellBakeScheduler() *ShellBakeScheduler {
	return NewShellBakeSchedulerWithParams(DefaultFullInterval, DefaultDirtyMargin)
}

// NewShellBakeSchedulerWithParams создаёт планировщик с явными параметрами
func NewShellBakeSchedulerWithParams(fullInterval, dirtyMargin float64) *ShellBakeScheduler {
	return &ShellBakeScheduler{
		fullInterval: fullInterval,
		fullTimer:    fullInterval,
		dirtyMargin:  dirtyMargin,
	}
}

// MarkVoxelDirty расширяет (или инициализирует) накопленный грязный объём
// мировым экстентом вокселя: центр ± пол-вокселя плюс запас.
func (s *ShellBakeScheduler) MarkVoxelDirty(coord vec.Vec3) {
	center := world.WorldCenter(coord)
	half := world.VoxelEdge/2 + s.dirtyMargin
	extent := AABB{
		Min: vec.Vec3Float{X: center.X - half, Y: center.Y - half, Z: center.Z - half},
		Max: vec.Vec3Float{X: center.X + half, Y: center.Y + half, Z: center.Z + half},
	}

	if s.pendingDirty == nil {
		s.pendingDirty = &extent
		return
	}
	s.pendingDirty.Expand(extent)
}

// HasPendingDirty сообщает, накоплен ли локальный грязный объём
func (s *ShellBakeScheduler) HasPendingDirty() bool {
	return s.pendingDirty != nil
}

// Tick продвигает таймеры на dt и возвращает задачи, созревшие на этом тике.
//
// Накопленный грязный объём даёт одну задачу local_dirty и сбрасывается.
// По истечении таймера создаётся одна задача full_consolidation с коробкой,
// покрывающей весь мир: периодическая страховка от дрейфа и пропущенных
// инкрементальных обновлений, какой бы точной ни была локальная пометка.
func (s *ShellBakeScheduler) Tick(dt float64) []ShellBakeJob {
	var jobs []ShellBakeJob

	if s.pendingDirty != nil {
		jobs = append(jobs, ShellBakeJob{
			Bounds:   *s.pendingDirty,
			Priority: PriorityLocal,
			Reason:   ReasonLocalDirty,
		})
		s.pendingDirty = nil
	}

	s.fullTimer -= dt
	if s.fullTimer <= 0 {
		s.fullTimer = s.fullInterval
		jobs = append(jobs, ShellBakeJob{
			Bounds: AABB{
				Min: vec.Vec3Float{X: -fullBakeExtent, Y: -fullBakeExtent, Z: -fullBakeExtent},
				Max: vec.Vec3Float{X: fullBakeExtent, Y: fullBakeExtent, Z: fullBakeExtent},
			},
			Priority: PriorityFull,
			Reason:   ReasonFullConsolidation,
		})
	}

	return jobs
}

// PushResult буферизует результат внешнего исполнителя перестройки
func (s *ShellBakeScheduler) PushResult(result BakeResult) {
	s.results = append(s.results, result)
}

// DrainResults возвращает накопленные результаты и очищает буфер
func (s *ShellBakeScheduler) DrainResults() []BakeResult {
	if len(s.results) == 0 {
		return nil
	}
	results := s.results
	s.results = nil
	return results
}
