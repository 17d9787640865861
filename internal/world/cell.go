package world

import (
	"math"

	"github.com/annel0/voxel-siege/internal/vec"
)

// MaterialID идентифицирует материал вокселя
type MaterialID uint8

const (
	MatAir    MaterialID = iota // Пустота (в мире не хранится)
	MatDirt                     // Земля
	MatWood                     // Дерево
	MatStone                    // Камень
	MatBrick                    // Кирпич
	MatMetal                    // Металл
	MatGlass                    // Стекло
)

// DefaultMaxHP запас прочности для неизвестных материалов
const DefaultMaxHP uint16 = 40

// DefaultColor цвет для неизвестных материалов (пурпурный, хорошо заметен)
const DefaultColor uint32 = 0xFF00FF

// materialMaxHP фиксированная таблица прочности материалов
var materialMaxHP = map[MaterialID]uint16{
	MatDirt:  20,
	MatWood:  35,
	MatStone: 100,
	MatBrick: 80,
	MatMetal: 160,
	MatGlass: 8,
}

// materialColor фиксированная таблица цветов материалов (0xRRGGBB)
var materialColor = map[MaterialID]uint32{
	MatDirt:  0x8B5A2B,
	MatWood:  0xA0722D,
	MatStone: 0x8F8F94,
	MatBrick: 0xB74A33,
	MatMetal: 0x6E7B8B,
	MatGlass: 0xBFE8F0,
}

// MaterialMaxHP возвращает максимальный запас прочности материала.
// Неизвестные материалы получают дефолт — операция никогда не падает.
func MaterialMaxHP(material MaterialID) uint16 {
	if hp, ok := materialMaxHP[material]; ok {
		return hp
	}
	return DefaultMaxHP
}

// MaterialColor возвращает упакованный цвет материала (0xRRGGBB).
func MaterialColor(material MaterialID) uint32 {
	if c, ok := materialColor[material]; ok {
		return c
	}
	return DefaultColor
}

// VoxelCell представляет один занятый воксель мира
type VoxelCell struct {
	Material MaterialID // Идентификатор материала
	HP       uint16     // Текущий запас прочности
	MaxHP    uint16     // Максимальный запас прочности
	Color    uint32     // Упакованный цвет 0xRRGGBB
	Normal   [2]uint8   // Октаэдрально упакованная нормаль поверхности
}

// NewCell создаёт воксель с полным запасом прочности для материала.
func NewCell(material MaterialID, normal vec.Vec3Float) VoxelCell {
	maxHP := MaterialMaxHP(material)
	return VoxelCell{
		Material: material,
		HP:       maxHP,
		MaxHP:    maxHP,
		Color:    MaterialColor(material),
		Normal:   OctEncodeNormal(normal),
	}
}

// OctEncodeNormal упаковывает нормаль в два байта октаэдральной проекцией.
// Вектор нормализуется (почти нулевая длина — вверх), проецируется на
// октаэдр L1-нормировкой, нижняя полусфера складывается в верхнюю,
// компоненты квантуются в uint8 с центром в 128.
func OctEncodeNormal(normal vec.Vec3Float) [2]uint8 {
	n := normal.Normalize()

	l1 := math.Abs(n.X) + math.Abs(n.Y) + math.Abs(n.Z)
	px := n.X / l1
	pz := n.Z / l1

	if n.Y < 0 {
		// Складываем нижнюю полусферу в верхнюю
		ox := (1.0 - math.Abs(pz)) * sign(px)
		oz := (1.0 - math.Abs(px)) * sign(pz)
		px, pz = ox, oz
	}

	return [2]uint8{quantizeOct(px), quantizeOct(pz)}
}

// quantizeOct переводит компонент [-1, 1] в uint8 с центром в 128
func quantizeOct(v float64) uint8 {
	q := int(math.Round(v*127.0)) + 128
	if q < 0 {
		q = 0
	}
	if q > 255 {
		q = 255
	}
	return uint8(q)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
