package sync

import (
	"time"

	"github.com/annel0/voxel-siege/internal/eventbus"
	"github.com/annel0/voxel-siege/internal/logging"
)

// SyncManager координирует работу всех компонентов синхронизации:
// BatchManager, SyncProducer, SyncConsumer.

type SyncManager struct {
	bm       *BatchManager
	producer *SyncProducer
	consumer *SyncConsumer
}

type SyncConfig struct {
	NodeID     string
	Bus        eventbus.EventBus
	BatchSize  int
	FlushEvery time.Duration
	UseZstd    bool
	Apply      ApplyFunc // обработчик входящих изменений (может быть nil)
}

func NewSyncManager(cfg SyncConfig) (*SyncManager, error) {
	var compressor DeltaCompressor
	if cfg.UseZstd {
		compressor = NewZstdCompressor()
		logging.Info("🔄 SyncManager: используется zstd-компрессия")
	} else {
		compressor = NewPassthroughCompressor()
		logging.Info("🔄 SyncManager: компрессия отключена")
	}

	bm := NewBatchManager(cfg.Bus, cfg.NodeID, cfg.BatchSize, cfg.FlushEvery, compressor)
	producer, err := NewSyncProducer(cfg.Bus, bm)
	if err != nil {
		return nil, err
	}

	consumer, err := NewSyncConsumer(cfg.Bus, compressor, cfg.Apply)
	if err != nil {
		producer.Stop()
		return nil, err
	}

	logging.Info("✅ SyncManager инициализирован: node=%s, batch=%d, flush=%v",
		cfg.NodeID, cfg.BatchSize, cfg.FlushEvery)

	return &SyncManager{
		bm:       bm,
		producer: producer,
		consumer: consumer,
	}, nil
}

func (sm *SyncManager) Stop() {
	sm.producer.Stop()
	sm.consumer.Stop()
	sm.bm.Stop()
	logging.Info("🔄 SyncManager остановлен")
}
