// event-cli подключается к шине событий воксельного мира и выводит события
// в терминал (аналог tail -f для рендер-дельт, аудио и результатов урона).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/voxel-siege/internal/eventbus"
)

const defaultNatsURL = "nats://127.0.0.1:4222"

func main() {
	var (
		natsURL   = flag.String("nats", defaultNatsURL, "Адрес NATS сервера")
		stream    = flag.String("stream", "VOXEL_EVENTS", "Имя JetStream стрима")
		types     = flag.String("types", "", "Фильтр типов событий (через запятую: RenderDelta,AudioBatch,DamageResult,BakeResult)")
		sources   = flag.String("sources", "", "Фильтр источников (через запятую)")
		raw       = flag.Bool("raw", false, "Печатать сырой payload вместо сводки")
		retention = flag.Duration("retention", 24*time.Hour, "Срок хранения стрима при создании")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, *retention)
	if err != nil {
		log.Fatalf("❌ Подключение к NATS: %v", err)
	}

	filter := eventbus.Filter{
		Types:   parseStringList(*types),
		Sources: parseStringList(*sources),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := bus.Subscribe(ctx, filter, func(ctx context.Context, ev *eventbus.Envelope) {
		printEnvelope(ev, *raw)
	})
	if err != nil {
		log.Fatalf("❌ Подписка: %v", err)
	}
	defer sub.Unsubscribe()

	fmt.Printf("📡 Слушаем %s (stream=%s, types=%v)...\n", *natsURL, *stream, filter.Types)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\n👋 Остановлено")
}

func printEnvelope(ev *eventbus.Envelope, raw bool) {
	ts := ev.Timestamp.Format("15:04:05.000")
	if raw {
		fmt.Printf("[%s] %-13s src=%s prio=%d\n%s\n", ts, ev.EventType, ev.Source, ev.Priority, ev.Payload)
		return
	}

	summary := summarize(ev)
	fmt.Printf("[%s] %-13s src=%-14s prio=%d %s\n", ts, ev.EventType, ev.Source, ev.Priority, summary)
}

// summarize достаёт из payload самое интересное для каждого типа события.
func summarize(ev *eventbus.Envelope) string {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(ev.Payload, &decoded); err != nil {
		return fmt.Sprintf("%d байт", len(ev.Payload))
	}

	switch ev.EventType {
	case eventbus.TypeRenderDelta:
		var batch struct {
			Batch struct {
				DirtyChunks []json.RawMessage `json:"DirtyChunks"`
				BakeJobs    []json.RawMessage `json:"BakeJobs"`
			} `json:"Batch"`
		}
		if json.Unmarshal(ev.Payload, &batch) == nil {
			return fmt.Sprintf("чанков=%d задач=%d", len(batch.Batch.DirtyChunks), len(batch.Batch.BakeJobs))
		}
	case eventbus.TypeAudioBatch:
		var audio struct {
			Events []json.RawMessage `json:"Events"`
		}
		if json.Unmarshal(ev.Payload, &audio) == nil {
			return fmt.Sprintf("звуков=%d", len(audio.Events))
		}
	case eventbus.TypeDamageResult:
		var dmg struct {
			Result struct {
				Destroyed   bool   `json:"Destroyed"`
				RemainingHP uint16 `json:"RemainingHP"`
			} `json:"Result"`
		}
		if json.Unmarshal(ev.Payload, &dmg) == nil {
			if dmg.Result.Destroyed {
				return "разрушен"
			}
			return fmt.Sprintf("HP=%d", dmg.Result.RemainingHP)
		}
	}
	return fmt.Sprintf("%d байт", len(ev.Payload))
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
