package brick

import (
	"reflect"
	"testing"

	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
	"github.com/stretchr/testify/assert"
)

func TestRebuild_EmptyWorld(t *testing.T) {
	tree := RebuildFromWorld(world.NewVoxelWorld())
	assert.Empty(t, tree.Nodes, "Пустой мир — пустые узлы")
	assert.Empty(t, tree.Leaves, "Пустой мир — пустые листья")
	assert.Equal(t, 0, tree.VoxelCount())
}

func TestRebuild_SingleVoxelRoundTrip(t *testing.T) {
	w := world.NewVoxelWorld()
	coord := vec.Vec3{X: 5, Y: 9, Z: 14}
	w.Place(coord, world.NewCell(world.MatMetal, vec.Vec3Float{X: 1}))

	tree := RebuildFromWorld(w)
	if !assert.Len(t, tree.Nodes, 1, "Один воксель — один узел") {
		return
	}
	assert.Len(t, tree.Leaves, 1, "Один воксель — один лист")
	assert.Equal(t, 1, tree.VoxelCount())

	node := tree.Nodes[0]
	assert.Equal(t, PackChunkKey(coord.ToChunkCoords()), node.PackedCoord)

	local := coord.LocalInChunk()
	leaf := tree.LeafFor(node, ChildIndex(local))
	if !assert.NotNil(t, leaf, "Лист занятого под-блока должен находиться") {
		return
	}

	sub := SubVoxelIndex(local)
	assert.NotZero(t, leaf.Mask&(1<<uint(sub)), "Бит под-вокселя установлен")
	assert.Equal(t, uint8(world.MatMetal), leaf.Material[sub], "Материал сохраняется")
	assert.Equal(t, world.MaterialColor(world.MatMetal), leaf.Color[sub], "Цвет сохраняется")
	assert.Equal(t, world.MaterialMaxHP(world.MatMetal), leaf.HP[sub], "HP сохраняется")

	cell, _ := w.Get(coord)
	assert.Equal(t, cell.Normal, leaf.Normal[sub], "Нормаль сохраняется")
}

func TestRebuild_Deterministic(t *testing.T) {
	w := world.NewVoxelWorld()
	coords := []vec.Vec3{
		{X: -17, Y: 3, Z: 40}, {X: 0, Y: 0, Z: 0}, {X: 15, Y: 15, Z: 15},
		{X: 16, Y: 0, Z: 0}, {X: -1, Y: -1, Z: -1}, {X: 100, Y: 50, Z: -100},
	}
	for i, c := range coords {
		w.Place(c, world.NewCell(world.MaterialID(1+i%6), vec.Vec3Float{Y: 1}))
	}

	first := RebuildFromWorld(w)
	second := RebuildFromWorld(w)
	if !reflect.DeepEqual(first, second) {
		t.Error("Перестройка одного и того же мира должна быть детерминированной")
	}

	// узлы отсортированы по упакованному ключу
	for i := 1; i < len(first.Nodes); i++ {
		if first.Nodes[i-1].PackedCoord >= first.Nodes[i].PackedCoord {
			t.Errorf("Узлы не отсортированы по ключу: %d >= %d",
				first.Nodes[i-1].PackedCoord, first.Nodes[i].PackedCoord)
		}
	}

	assert.Equal(t, len(coords), first.VoxelCount(), "Все воксели учтены")
}

func TestRebuild_LeafBaseContiguous(t *testing.T) {
	w := world.NewVoxelWorld()
	// несколько под-блоков в одном чанке и соседний чанк
	for _, c := range []vec.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 5, Y: 0, Z: 0}, {X: 0, Y: 5, Z: 0},
		{X: 12, Y: 12, Z: 12}, {X: 20, Y: 0, Z: 0},
	} {
		w.Place(c, world.NewCell(world.MatStone, vec.Vec3Float{Y: 1}))
	}

	tree := RebuildFromWorld(w)
	total := 0
	for _, node := range tree.Nodes {
		assert.Equal(t, uint32(total), node.LeafBase, "Листья чанков лежат подряд")
		count := 0
		for child := 0; child < 64; child++ {
			if leaf := tree.LeafFor(node, child); leaf != nil {
				count++
				assert.NotZero(t, leaf.Mask, "Пустых листьев в дереве быть не должно")
			}
		}
		total += count
	}
	assert.Equal(t, len(tree.Leaves), total, "Все листья достижимы через узлы")
}

func TestPackChunkKey_OrderAndClamp(t *testing.T) {
	// порядок по осям: X старше Y, Y старше Z
	a := PackChunkKey(vec.Vec3{X: 0, Y: 0, Z: 1})
	b := PackChunkKey(vec.Vec3{X: 0, Y: 1, Z: 0})
	c := PackChunkKey(vec.Vec3{X: 1, Y: 0, Z: 0})
	if !(a < b && b < c) {
		t.Errorf("Порядок ключей нарушен: %d, %d, %d", a, b, c)
	}

	// отрицательные и положительные координаты различимы
	neg := PackChunkKey(vec.Vec3{X: -1, Y: 0, Z: 0})
	pos := PackChunkKey(vec.Vec3{X: 1, Y: 0, Z: 0})
	assert.NotEqual(t, neg, pos)
	assert.Less(t, neg, pos, "Отрицательная ось меньше положительной")

	// запредельные координаты зажимаются, а не переполняются
	huge := PackChunkKey(vec.Vec3{X: 1 << 30, Y: -(1 << 30), Z: 0})
	edge := PackChunkKey(vec.Vec3{X: (1 << 20) - 1, Y: -(1 << 20), Z: 0})
	assert.Equal(t, edge, huge, "Координаты за пределом диапазона зажимаются к границе")
}

func TestChildAndSubVoxelIndex(t *testing.T) {
	// все 4096 локальных координат дают корректные индексы без коллизий
	seen := make(map[[2]int]bool)
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				local := vec.Vec3{X: x, Y: y, Z: z}
				child := ChildIndex(local)
				sub := SubVoxelIndex(local)
				if child < 0 || child > 63 || sub < 0 || sub > 63 {
					t.Fatalf("Индекс вне диапазона для %v: child=%d sub=%d", local, child, sub)
				}
				key := [2]int{child, sub}
				if seen[key] {
					t.Fatalf("Коллизия индексов для %v", local)
				}
				seen[key] = true
			}
		}
	}
}

func BenchmarkRebuildFromWorld(b *testing.B) {
	w := world.NewVoxelWorld()
	for x := 0; x < 32; x++ {
		for y := 0; y < 8; y++ {
			for z := 0; z < 32; z++ {
				w.Place(vec.Vec3{X: x, Y: y, Z: z}, world.NewCell(world.MatStone, vec.Vec3Float{Y: 1}))
			}
		}
	}
	snapshot := w.SnapshotCells()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RebuildFromSnapshot(snapshot)
	}
}
