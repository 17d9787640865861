package world

import (
	"testing"

	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/stretchr/testify/assert"
)

func hitAt(coord vec.Vec3) VoxelHit {
	return VoxelHit{
		Coord:  coord,
		Point:  WorldCenter(coord),
		Normal: vec.Vec3Float{Y: 1},
	}
}

func TestApplyDamage_MissIsNeutral(t *testing.T) {
	w := NewVoxelWorld()
	var audio AudioBuffer

	result := ApplyDamageAtHit(w, hitAt(vec.Vec3{X: 1, Y: 1, Z: 1}), 50, vec.Vec3Float{}, SourceCannonball, &audio)

	assert.False(t, result.Destroyed, "Промах не разрушает")
	assert.Equal(t, uint16(0), result.RemainingHP, "Промах возвращает нулевой остаток")
	assert.Equal(t, 0, audio.Len(), "Промах не порождает звуковых событий")
	assert.Equal(t, 0, w.DirtyChunkCount(), "Промах не пачкает чанки")
}

func TestApplyDamage_CrackOnHalfCrossing(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 2, Z: 0}
	w.Place(coord, NewCell(MatStone, vec.Vec3Float{Y: 1})) // 100 HP
	var audio AudioBuffer

	// 100 -> 40: пересечение половины (50) сверху вниз
	result := ApplyDamageAtHit(w, hitAt(coord), 60, vec.Vec3Float{}, SourceCannonball, &audio)

	assert.False(t, result.Destroyed)
	assert.Equal(t, uint16(40), result.RemainingHP, "Остаток прочности после 60 урона")

	events := audio.Drain()
	kinds := make([]AudioKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []AudioKind{AudioHit, AudioCrack}, kinds, "Ожидались Hit и Crack")

	// второй удар ниже половины: Crack больше не повторяется
	ApplyDamageAtHit(w, hitAt(coord), 10, vec.Vec3Float{}, SourceCannonball, &audio)
	for _, ev := range audio.Drain() {
		assert.NotEqual(t, AudioCrack, ev.Kind, "Crack должен срабатывать ровно один раз")
	}
}

func TestApplyDamage_RepeatedHitsDestroy(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 1, Z: 0}
	w.Place(coord, NewCell(MatGlass, vec.Vec3Float{Y: 1})) // 8 HP
	var audio AudioBuffer

	hits := 0
	for {
		hits++
		result := ApplyDamageAtHit(w, hitAt(coord), 3, vec.Vec3Float{}, SourceCannonball, &audio)
		if result.Destroyed {
			break
		}
		if hits > 10 {
			t.Fatal("Воксель не разрушился за разумное число ударов")
		}
	}

	assert.Equal(t, 3, hits, "8 HP / 3 урона = 3 удара")
	assert.False(t, w.Occupied(coord), "Разрушенный воксель удалён из мира")

	events := audio.Drain()
	last := events[len(events)-1]
	assert.Equal(t, AudioBreak, last.Kind, "Последнее событие — Break")
}

func TestApplyDamage_SourceScaling(t *testing.T) {
	up := vec.Vec3Float{Y: 1}
	var audio AudioBuffer

	// hitscan: 20 * 0.22 = 4.4 -> ceil = 5
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 1, Z: 0}
	w.Place(coord, NewCell(MatStone, up))
	result := ApplyDamageAtHit(w, hitAt(coord), 20, vec.Vec3Float{}, SourceHitscan, &audio)
	assert.Equal(t, uint16(95), result.RemainingHP, "Hitscan множитель 0.22 с округлением вверх")

	// rocket: 20 * 1.25 = 25
	w2 := NewVoxelWorld()
	w2.Place(coord, NewCell(MatStone, up))
	result = ApplyDamageAtHit(w2, hitAt(coord), 20, vec.Vec3Float{}, SourceRocket, &audio)
	assert.Equal(t, uint16(75), result.RemainingHP, "Rocket множитель 1.25")
}

func TestApplyDamage_HugeDamageDestroys(t *testing.T) {
	up := vec.Vec3Float{Y: 1}
	coord := vec.Vec3{X: 0, Y: 3, Z: 0}
	var audio AudioBuffer

	// урон за пределами uint16 не должен заворачиваться по модулю:
	// 65600 mod 2^16 = 64, что меньше прочности металла
	for _, damage := range []float64{65600, 1e9} {
		w := NewVoxelWorld()
		w.Place(coord, NewCell(MatMetal, up)) // 160 HP

		result := ApplyDamageAtHit(w, hitAt(coord), damage, vec.Vec3Float{}, SourceCannonball, &audio)

		assert.True(t, result.Destroyed, "Урон %v должен разрушить воксель", damage)
		assert.Equal(t, uint16(0), result.RemainingHP)
		assert.False(t, w.Occupied(coord), "Разрушенный воксель удалён из мира")
	}
}

func TestApplyDamage_OneShotEmitsCrackBeforeBreak(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 1, Z: 0}
	w.Place(coord, NewCell(MatGlass, vec.Vec3Float{Y: 1})) // 8 HP
	var audio AudioBuffer

	// разрушение одним ударом из верхней половины прочности:
	// порог половины пересечён в этом же вызове
	result := ApplyDamageAtHit(w, hitAt(coord), 10, vec.Vec3Float{}, SourceCannonball, &audio)
	assert.True(t, result.Destroyed)

	events := audio.Drain()
	kinds := make([]AudioKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []AudioKind{AudioHit, AudioCrack, AudioBreak}, kinds,
		"Crack предшествует Break при разрушении с пересечением половины")
}

func TestApplyDamage_MinimumOneDamage(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 1, Z: 0}
	w.Place(coord, NewCell(MatMetal, vec.Vec3Float{Y: 1})) // 160 HP
	var audio AudioBuffer

	// нулевой и отрицательный урон всё равно снимают минимум 1 HP
	result := ApplyDamageAtHit(w, hitAt(coord), 0, vec.Vec3Float{}, SourceCannonball, &audio)
	assert.Equal(t, uint16(159), result.RemainingHP, "Нулевой урон снимает 1 HP")

	result = ApplyDamageAtHit(w, hitAt(coord), -5, vec.Vec3Float{}, SourceCannonball, &audio)
	assert.Equal(t, uint16(158), result.RemainingHP, "Отрицательный урон снимает 1 HP")
}

func TestSourceScale_UnknownFallback(t *testing.T) {
	assert.Equal(t, 1.0, SourceScale(DamageSource(200)), "Неизвестный источник получает множитель 1.0")
}
