package sync

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChanges() []Change {
	return []Change{
		{Data: []byte("render-delta-chunk-0-0-0"), Priority: 7, ChangeType: "RenderDelta"},
		{Data: []byte("audio-hit"), Priority: 3, ChangeType: "AudioBatch"},
		{Data: []byte{}, Priority: 1},
	}
}

func TestPassthroughRoundTrip(t *testing.T) {
	c := NewPassthroughCompressor()

	payload, err := c.Compress(sampleChanges())
	require.NoError(t, err)

	decoded, err := c.Decompress(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 3, "Все изменения декодированы")

	assert.Equal(t, []byte("render-delta-chunk-0-0-0"), decoded[0].Data)
	assert.Equal(t, []byte("audio-hit"), decoded[1].Data)
	assert.Empty(t, decoded[2].Data)
}

func TestPassthroughCorruptTail(t *testing.T) {
	c := NewPassthroughCompressor()
	payload, err := c.Compress([]Change{{Data: []byte("abc")}})
	require.NoError(t, err)

	// обрезанный хвост игнорируется, а не роняет декодер
	decoded, err := c.Decompress(append(payload, 0x00, 0x00))
	require.NoError(t, err)
	assert.Len(t, decoded, 1)
}

func TestZstdRoundTrip(t *testing.T) {
	c := NewZstdCompressor()

	payload, err := c.Compress(sampleChanges())
	require.NoError(t, err)

	decoded, err := c.Decompress(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	assert.Equal(t, []byte("render-delta-chunk-0-0-0"), decoded[0].Data)
}

func TestZstdCompressesRepetitiveDeltas(t *testing.T) {
	// рендер-дельты соседних тиков почти одинаковы — zstd должен ужимать
	var changes []Change
	chunk := bytes.Repeat([]byte("chunk(0,0,0):dirty;"), 50)
	for i := 0; i < 20; i++ {
		changes = append(changes, Change{Data: chunk})
	}

	z := NewZstdCompressor()
	compressed, err := z.Compress(changes)
	require.NoError(t, err)

	p := NewPassthroughCompressor()
	raw, err := p.Compress(changes)
	require.NoError(t, err)

	assert.Less(t, len(compressed), len(raw)/10,
		"Повторяющиеся дельты должны сжиматься на порядок")
}

func TestZstdRejectsGarbage(t *testing.T) {
	c := NewZstdCompressor()
	_, err := c.Decompress([]byte("definitely not zstd"))
	assert.Error(t, err, "Мусор на входе декодера — ошибка")
}
