package sync

import "github.com/klauspost/compress/zstd"

// DeltaCompressor кодирует/декодирует изменения (Change) в компактный вид.
// Passthrough просто кадрирует данные; zstd дополнительно сжимает кадры —
// рендер-дельты соседних тиков сильно повторяются и сжимаются хорошо.

type DeltaCompressor interface {
	Compress(changes []Change) ([]byte, error)
	Decompress(payload []byte) ([]Change, error)
}

type passthroughCompressor struct{}

func NewPassthroughCompressor() DeltaCompressor { return &passthroughCompressor{} }

func (p *passthroughCompressor) Compress(changes []Change) ([]byte, error) {
	// очень простой формат: [len(uint32)] [data] ...
	buf := make([]byte, 0)
	for _, c := range changes {
		n := uint32(len(c.Data))
		buf = append(buf, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		buf = append(buf, c.Data...)
	}
	return buf, nil
}

func (p *passthroughCompressor) Decompress(payload []byte) ([]Change, error) {
	var res []Change
	i := 0
	for i < len(payload) {
		if i+4 > len(payload) {
			break // corrupt, игнорируем хвост
		}
		n := uint32(payload[i])<<24 | uint32(payload[i+1])<<16 | uint32(payload[i+2])<<8 | uint32(payload[i+3])
		i += 4
		if i+int(n) > len(payload) {
			break
		}
		res = append(res, Change{Data: payload[i : i+int(n)]})
		i += int(n)
	}
	return res, nil
}

// zstdCompressor сжимает кадрированные изменения через zstd
type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewZstdCompressor() DeltaCompressor {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	dec, _ := zstd.NewReader(nil)
	return &zstdCompressor{enc: enc, dec: dec}
}

func (z *zstdCompressor) Compress(changes []Change) ([]byte, error) {
	// Сначала кадрируем как passthrough
	passthrough := &passthroughCompressor{}
	raw, err := passthrough.Compress(changes)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(raw, nil), nil
}

func (z *zstdCompressor) Decompress(payload []byte) ([]Change, error) {
	raw, err := z.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, err
	}
	passthrough := &passthroughCompressor{}
	return passthrough.Decompress(raw)
}
