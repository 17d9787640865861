package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerlinNoise2D_RangeAndDeterminism(t *testing.T) {
	a := PerlinNoise2D(0.37, 0.71, 42)
	b := PerlinNoise2D(0.37, 0.71, 42)

	assert.Equal(t, a, b, "Один сид и одна точка дают одно и то же значение")
	assert.GreaterOrEqual(t, a, 0.0, "Шум нормализован в [0, 1]")
	assert.LessOrEqual(t, a, 1.0, "Шум нормализован в [0, 1]")
}

func TestPerlinNoise2D_SeedSwitchReinitializes(t *testing.T) {
	// Смена сида между вызовами должна перестраивать генератор,
	// а не возвращать шум от предыдущего сида
	points := [][2]float64{{0.1, 0.9}, {1.3, 2.7}, {5.5, 0.2}, {3.14, 1.41}}

	differs := false
	for _, p := range points {
		first := PerlinNoise2D(p[0], p[1], 1)
		second := PerlinNoise2D(p[0], p[1], 2)
		if first != second {
			differs = true
		}
		// возврат к первому сиду воспроизводит исходное значение
		assert.Equal(t, first, PerlinNoise2D(p[0], p[1], 1),
			"Повторная инициализация сидом 1 воспроизводит шум")
	}
	assert.True(t, differs, "Разные сиды дают разный шум хотя бы в одной точке")
}
