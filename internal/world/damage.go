package world

import (
	"math"

	"github.com/annel0/voxel-siege/internal/vec"
)

// DamageSource определяет источник урона
type DamageSource uint8

const (
	SourceCannonball DamageSource = iota // Пушечное ядро
	SourceRocket                         // Ракета
	SourceHitscan                        // Мгновенное попадание (пуля)
)

// sourceScale фиксированные множители урона по источникам
var sourceScale = map[DamageSource]float64{
	SourceCannonball: 1.0,
	SourceRocket:     1.25,
	SourceHitscan:    0.22,
}

// SourceScale возвращает множитель урона источника (1.0 для неизвестных).
func SourceScale(source DamageSource) float64 {
	if s, ok := sourceScale[source]; ok {
		return s
	}
	return 1.0
}

// VoxelHit описывает попадание по вокселю
type VoxelHit struct {
	Coord  vec.Vec3      // Координата вокселя, по которому пришёлся удар
	Point  vec.Vec3Float // Точка попадания в мировых координатах
	Normal vec.Vec3Float // Нормаль поверхности в точке попадания
}

// DamageResult результат применения урона
type DamageResult struct {
	Destroyed   bool   // Воксель разрушен и удалён из мира
	RemainingHP uint16 // Остаток прочности (0 при разрушении или промахе)
}

// ApplyDamageAtHit применяет урон к вокселю в точке попадания.
//
// Попадание по уже пустой координате (устаревший hit) безопасно: возвращается
// нейтральный результат без каких-либо побочных эффектов. Урон масштабируется
// по источнику, округляется вверх и снимает не меньше одной единицы прочности.
// События Hit/Crack/Break накапливаются в audio; при нулевой прочности воксель
// удаляется из мира.
func ApplyDamageAtHit(w *VoxelWorld, hit VoxelHit, damage float64, impulse vec.Vec3Float, source DamageSource, audio *AudioBuffer) DamageResult {
	cell := w.GetMut(hit.Coord)
	if cell == nil {
		return DamageResult{Destroyed: false, RemainingHP: 0}
	}

	_ = impulse // Импульс резервируется для передачи в физику кластеров

	// Вычисляем в float64 и ограничиваем сверху до конвертации: прямое
	// приведение к uint16 заворачивается по модулю 2^16, и огромный удар
	// снимал бы меньше прочности, чем маленький.
	scaled := math.Ceil(math.Max(damage, 0.1) * SourceScale(source))
	var applied uint16
	switch {
	case scaled >= math.MaxUint16:
		applied = math.MaxUint16
	case scaled < 1:
		applied = 1
	default:
		applied = uint16(scaled)
	}

	wasAboveHalf := cell.HP > cell.MaxHP/2

	if applied >= cell.HP {
		cell.HP = 0
	} else {
		cell.HP -= applied
	}

	pos := WorldCenter(hit.Coord)
	material := cell.Material

	audio.Emit(AudioHit, pos, material)

	// Crack срабатывает ровно один раз: на вызове, в котором прочность
	// пересекла половину максимума сверху вниз. Разрушающий удар из
	// верхней половины тоже пересекает порог и даёт Crack перед Break.
	if wasAboveHalf && cell.HP <= cell.MaxHP/2 {
		audio.Emit(AudioCrack, pos, material)
	}

	if cell.HP == 0 {
		w.Remove(hit.Coord)
		audio.Emit(AudioBreak, pos, material)
		return DamageResult{Destroyed: true, RemainingHP: 0}
	}

	w.MarkMutated(hit.Coord)
	return DamageResult{Destroyed: false, RemainingHP: cell.HP}
}
