package vec

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как ключ в картах занятых вокселей, поэтому тип сравним.
type Vec3 struct {
	X int
	Y int
	Z int
}

// ToChunkCoords преобразует глобальные координаты вокселя в координаты чанка.
// Сдвиг вправо даёт floor-деление и для отрицательных координат.
func (v Vec3) ToChunkCoords() Vec3 {
	return Vec3{X: v.X >> 4, Y: v.Y >> 4, Z: v.Z >> 4} // Деление на 16
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..15 по каждой оси).
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y & 0xF, Z: v.Z & 0xF} // Модуль 16
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает другой вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Neighbors6 возвращает шесть гранево-смежных соседей вокселя.
// Порядок фиксирован: ±X, ±Y, ±Z.
func (v Vec3) Neighbors6() [6]Vec3 {
	return [6]Vec3{
		{X: v.X + 1, Y: v.Y, Z: v.Z},
		{X: v.X - 1, Y: v.Y, Z: v.Z},
		{X: v.X, Y: v.Y + 1, Z: v.Z},
		{X: v.X, Y: v.Y - 1, Z: v.Z},
		{X: v.X, Y: v.Y, Z: v.Z + 1},
		{X: v.X, Y: v.Y, Z: v.Z - 1},
	}
}

// Less задаёт полный порядок координат (X, затем Y, затем Z).
// Нужен для детерминированной сортировки наборов координат.
func (v Vec3) Less(other Vec3) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.Z < other.Z
}
