package world

import (
	"testing"

	"github.com/annel0/voxel-siege/internal/vec"
)

func TestNewCellFullHP(t *testing.T) {
	cell := NewCell(MatBrick, vec.Vec3Float{Y: 1})
	if cell.HP != cell.MaxHP {
		t.Errorf("Новая ячейка должна иметь полный HP: %d != %d", cell.HP, cell.MaxHP)
	}
	if cell.HP != 80 {
		t.Errorf("Прочность кирпича должна быть 80, получено %d", cell.HP)
	}
	if cell.Color != 0xB74A33 {
		t.Errorf("Цвет кирпича неверен: %06X", cell.Color)
	}
}

func TestMaterialFallbacks(t *testing.T) {
	unknown := MaterialID(99)
	if hp := MaterialMaxHP(unknown); hp != DefaultMaxHP {
		t.Errorf("Неизвестный материал должен получить дефолтный HP %d, получено %d", DefaultMaxHP, hp)
	}
	if c := MaterialColor(unknown); c != DefaultColor {
		t.Errorf("Неизвестный материал должен получить дефолтный цвет, получено %06X", c)
	}
}

func TestOctEncodeNormal(t *testing.T) {
	cases := []struct {
		name   string
		normal vec.Vec3Float
		want   [2]uint8
	}{
		{"вверх", vec.Vec3Float{Y: 1}, [2]uint8{128, 128}},
		{"ось X", vec.Vec3Float{X: 1}, [2]uint8{255, 128}},
		{"ось -X", vec.Vec3Float{X: -1}, [2]uint8{1, 128}},
		{"ось Z", vec.Vec3Float{Z: 1}, [2]uint8{128, 255}},
		// нулевая нормаль получает вертикальный fallback
		{"ноль", vec.Vec3Float{}, [2]uint8{128, 128}},
	}

	for _, c := range cases {
		got := OctEncodeNormal(c.normal)
		if got != c.want {
			t.Errorf("%s: ожидалось %v, получено %v", c.name, c.want, got)
		}
	}
}

func TestOctEncodeNormal_LowerHemisphere(t *testing.T) {
	// нормаль вниз складывается в верхнюю полусферу: (±1, ±1) углы
	got := OctEncodeNormal(vec.Vec3Float{Y: -1})
	if got[0] != 255 || got[1] != 255 {
		t.Errorf("Нормаль вниз должна кодироваться в угол октаэдра, получено %v", got)
	}
}
