package world

import (
	"testing"

	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestVoxelWorld_PlaceGetRemove(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 3, Y: 5, Z: 7}
	up := vec.Vec3Float{X: 0, Y: 1, Z: 0}

	_, found := w.Get(coord)
	assert.False(t, found, "Пустой мир не должен содержать вокселей")

	w.Place(coord, NewCell(MatStone, up))
	cell, found := w.Get(coord)
	assert.True(t, found, "Воксель должен существовать после установки")
	assert.Equal(t, MatStone, cell.Material, "Материал должен совпадать")
	assert.Equal(t, MaterialMaxHP(MatStone), cell.HP, "HP должен быть полным")
	assert.Equal(t, 1, w.Len(), "Размер мира должен быть 1")

	removed, ok := w.Remove(coord)
	assert.True(t, ok, "Remove должен вернуть удалённую ячейку")
	assert.Equal(t, MatStone, removed.Material, "Удалённая ячейка должна сохранить материал")
	assert.Equal(t, 0, w.Len(), "Мир должен опустеть")

	_, ok = w.Remove(coord)
	assert.False(t, ok, "Повторный Remove должен вернуть false")
}

func TestVoxelWorld_PlaceOverwrites(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 0, Y: 0, Z: 0}
	up := vec.Vec3Float{X: 0, Y: 1, Z: 0}

	w.Place(coord, NewCell(MatWood, up))
	w.Place(coord, NewCell(MatMetal, up))

	cell, _ := w.Get(coord)
	assert.Equal(t, MatMetal, cell.Material, "Повторная установка перезаписывает ячейку")
	assert.Equal(t, 1, w.Len(), "Координата остаётся уникальной")
}

func TestVoxelWorld_DirtyChunkDrain(t *testing.T) {
	w := NewVoxelWorld()
	up := vec.Vec3Float{X: 0, Y: 1, Z: 0}

	// два вокселя в одном чанке, один в другом
	w.Place(vec.Vec3{X: 1, Y: 1, Z: 1}, NewCell(MatStone, up))
	w.Place(vec.Vec3{X: 2, Y: 2, Z: 2}, NewCell(MatStone, up))
	w.Place(vec.Vec3{X: 20, Y: 1, Z: 1}, NewCell(MatStone, up))

	dirty := w.DrainDirtyChunks()
	assert.Len(t, dirty, 2, "Должно быть помечено ровно 2 чанка")

	// повторный drain без мутаций пуст
	assert.Nil(t, w.DrainDirtyChunks(), "Повторный drain должен быть пустым")

	w.Remove(vec.Vec3{X: 1, Y: 1, Z: 1})
	dirty = w.DrainDirtyChunks()
	assert.Len(t, dirty, 1, "Удаление снова пачкает чанк")
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 0}, dirty[0], "Чанк удаления должен совпадать")
}

func TestVoxelWorld_MarkMutated(t *testing.T) {
	w := NewVoxelWorld()
	coord := vec.Vec3{X: 5, Y: 5, Z: 5}
	w.Place(coord, NewCell(MatBrick, vec.Vec3Float{Y: 1}))
	w.DrainDirtyChunks()

	cell := w.GetMut(coord)
	if cell == nil {
		t.Fatal("GetMut должен вернуть существующую ячейку")
	}
	cell.HP = 10
	w.MarkMutated(coord)

	assert.Equal(t, 1, w.DirtyChunkCount(), "Мутация через GetMut должна пачкать чанк")

	got, _ := w.Get(coord)
	assert.Equal(t, uint16(10), got.HP, "Изменение через GetMut должно быть видно")
}

func TestVoxelWorld_Snapshot(t *testing.T) {
	w := NewVoxelWorld()
	up := vec.Vec3Float{Y: 1}
	coords := []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	for _, c := range coords {
		w.Place(c, NewCell(MatDirt, up))
	}

	snap := w.SnapshotCells()
	assert.Len(t, snap, 3, "Снапшот должен содержать все ячейки")

	// снапшот независим от последующих мутаций
	w.Remove(coords[0])
	assert.Len(t, snap, 3, "Снапшот не должен меняться после Remove")
	assert.Equal(t, 2, w.Len(), "Мир видит удаление")

	set := w.OccupiedSet()
	assert.Len(t, set, 2)
	_, ok := set[coords[0]]
	assert.False(t, ok, "Удалённая координата отсутствует в OccupiedSet")
}

func TestWorldCenter(t *testing.T) {
	c := WorldCenter(vec.Vec3{X: 2, Y: 0, Z: -1})
	assert.InDelta(t, 2.5, c.X, 1e-9)
	assert.InDelta(t, 0.5, c.Y, 1e-9)
	assert.InDelta(t, -0.5, c.Z, 1e-9)
}
