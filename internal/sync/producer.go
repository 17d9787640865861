package sync

import (
	"context"

	"github.com/annel0/voxel-siege/internal/eventbus"
)

// SyncProducer подписывается на события воркера на шине и передаёт их BatchManager'у.

type SyncProducer struct {
	bus eventbus.EventBus
	bm  *BatchManager
	sub eventbus.Subscription
}

func NewSyncProducer(bus eventbus.EventBus, bm *BatchManager) (*SyncProducer, error) {
	sp := &SyncProducer{bus: bus, bm: bm}
	sub, err := bus.Subscribe(context.Background(),
		eventbus.Filter{Types: []string{eventbus.TypeRenderDelta, eventbus.TypeAudioBatch}}, sp.handle)
	if err != nil {
		return nil, err
	}
	sp.sub = sub
	return sp, nil
}

func (sp *SyncProducer) handle(ctx context.Context, ev *eventbus.Envelope) {
	sp.bm.AddChange(Change{
		Data:       ev.Payload,
		Priority:   ev.Priority,
		Timestamp:  ev.Timestamp,
		ChangeType: ev.EventType,
	})
}

func (sp *SyncProducer) Stop() { sp.sub.Unsubscribe() }
