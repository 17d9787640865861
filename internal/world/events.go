package world

import (
	"github.com/annel0/voxel-siege/internal/vec"
)

// AudioKind определяет тип звукового события
type AudioKind uint8

const (
	AudioHit            AudioKind = iota // Попадание по вокселю
	AudioCrack                           // Прочность упала ниже половины
	AudioBreak                           // Воксель разрушен
	AudioCollapseStart                   // Кластер оторвался и начал падение
	AudioCollapseSettle                  // Кластер осел
)

// String возвращает строковое представление типа звукового события
func (k AudioKind) String() string {
	switch k {
	case AudioHit:
		return "hit"
	case AudioCrack:
		return "crack"
	case AudioBreak:
		return "break"
	case AudioCollapseStart:
		return "collapse_start"
	case AudioCollapseSettle:
		return "collapse_settle"
	default:
		return "unknown"
	}
}

// AudioEvent описывает один звуковой триггер для внешнего аудио-потребителя
type AudioEvent struct {
	Kind     AudioKind     // Тип события
	WorldPos vec.Vec3Float // Мировая позиция источника
	Material MaterialID    // Материал, породивший звук
}

// AudioBuffer накапливает звуковые события до сброса на тике воркера
type AudioBuffer struct {
	events []AudioEvent
}

// Emit добавляет событие в буфер
func (b *AudioBuffer) Emit(kind AudioKind, pos vec.Vec3Float, material MaterialID) {
	b.events = append(b.events, AudioEvent{Kind: kind, WorldPos: pos, Material: material})
}

// Drain возвращает накопленные события и очищает буфер
func (b *AudioBuffer) Drain() []AudioEvent {
	if len(b.events) == 0 {
		return nil
	}
	events := b.events
	b.events = nil
	return events
}

// Len возвращает количество накопленных событий
func (b *AudioBuffer) Len() int {
	return len(b.events)
}
