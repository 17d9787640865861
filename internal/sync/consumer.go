package sync

import (
	"context"
	"fmt"

	"github.com/annel0/voxel-siege/internal/eventbus"
	"github.com/annel0/voxel-siege/internal/logging"
)

// ApplyFunc применяет одно декодированное изменение на стороне потребителя.
type ApplyFunc func(ch Change) error

// SyncConsumer слушает RenderBatch сообщения и раздаёт изменения обработчику.

type SyncConsumer struct {
	sub        eventbus.Subscription
	compressor DeltaCompressor
	apply      ApplyFunc
}

func NewSyncConsumer(bus eventbus.EventBus, compressor DeltaCompressor, apply ApplyFunc) (*SyncConsumer, error) {
	if compressor == nil {
		compressor = NewPassthroughCompressor()
	}
	sc := &SyncConsumer{compressor: compressor, apply: apply}
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{"RenderBatch"}}, sc.handle)
	if err != nil {
		return nil, err
	}
	sc.sub = sub
	return sc, nil
}

func (sc *SyncConsumer) handle(ctx context.Context, ev *eventbus.Envelope) {
	logging.Debug("SyncConsumer: batch size=%d bytes from %s", len(ev.Payload), ev.Source)

	changes, err := sc.compressor.Decompress(ev.Payload)
	if err != nil {
		logging.Warn("SyncConsumer decompress error: %v", err)
		return
	}

	logging.Debug("SyncConsumer: decoded %d changes", len(changes))

	for i, ch := range changes {
		if err := sc.applyChange(&ch); err != nil {
			logging.Warn("SyncConsumer: ошибка применения изменения %d: %v", i, err)
		}
	}
}

// applyChange применяет отдельное изменение
func (sc *SyncConsumer) applyChange(change *Change) error {
	if change == nil {
		return fmt.Errorf("change is nil")
	}
	if len(change.Data) == 0 {
		return fmt.Errorf("change data is empty")
	}

	if sc.apply == nil {
		logging.Debug("SyncConsumer: изменение %s, размер=%d байт (обработчик не задан)",
			change.ChangeType, len(change.Data))
		return nil
	}
	return sc.apply(*change)
}

func (sc *SyncConsumer) Stop() { sc.sub.Unsubscribe() }
