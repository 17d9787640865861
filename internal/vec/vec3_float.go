package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// Используется для мировых позиций, скоростей и ограничивающих объёмов.
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает другой вектор
func (v Vec3Float) Sub(other Vec3Float) Vec3Float {
	return Vec3Float{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale умножает вектор на скаляр
func (v Vec3Float) Scale(s float64) Vec3Float {
	return Vec3Float{
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// Length возвращает длину вектора
func (v Vec3Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize возвращает вектор единичной длины в том же направлении.
// Для вектора с длиной, близкой к нулю, возвращается (0, 1, 0).
func (v Vec3Float) Normalize() Vec3Float {
	l := v.Length()
	if l < 1e-8 {
		return Vec3Float{X: 0, Y: 1, Z: 0}
	}
	return v.Scale(1.0 / l)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3Float) DistanceTo(other Vec3Float) float64 {
	return v.Sub(other).Length()
}
