package eventbus

import (
	"context"
	"encoding/json"

	"github.com/annel0/voxel-siege/internal/logging"
	"github.com/annel0/voxel-siege/internal/worker"
)

// Типы событий воркера на шине.
const (
	TypeRenderDelta  = "RenderDelta"
	TypeAudioBatch   = "AudioBatch"
	TypeDamageResult = "DamageResult"
	TypeBakeResult   = "BakeResult"
)

// workerSource — имя источника в конвертах событий воркера.
const workerSource = "voxel-worker"

// PublishWorkerEvent зеркалирует событие воркера на глобальную шину для
// внешних потребителей (реплеи, инструменты наблюдения). Рендер-пакеты идут
// с высоким приоритетом: они несут кадровую дельту и не должны дропаться.
// До вызова Init публикация — no-op.
func PublishWorkerEvent(ctx context.Context, ev worker.Event) error {
	var (
		eventType string
		priority  int
	)
	switch ev.GetType() {
	case worker.EventRender:
		eventType, priority = TypeRenderDelta, 7
	case worker.EventAudio:
		eventType, priority = TypeAudioBatch, 3
	case worker.EventDamageResult:
		eventType, priority = TypeDamageResult, 5
	case worker.EventBakeResult:
		eventType, priority = TypeBakeResult, 5
	default:
		logging.Warn("EventBus: неизвестный тип события воркера: %T", ev)
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return Publish(ctx, NewEnvelope(workerSource, eventType, priority, payload))
}
