// Package brick строит GPU-ориентированное иерархическое представление
// занятого воксельного множества: по одному узлу на занятый чанк и по
// одному листу на занятый под-блок 4³. Дерево перестраивается целиком из
// полного снимка мира и является чистой функцией этого снимка.
package brick

import (
	"math/bits"
	"sort"

	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
)

const (
	// coordBits бит на ось в упакованном ключе чанка
	coordBits = 21
	// coordBias смещение, переводящее знаковую ось в беззнаковый диапазон
	coordBias = 1 << (coordBits - 1)
	// coordMask маска одной оси
	coordMask = (1 << coordBits) - 1
)

// BrickNode описывает один занятый чанк 16³.
type BrickNode struct {
	ChildMask   uint64 // Бит i установлен, если под-блок i занят
	LeafBase    uint32 // Индекс первого листа чанка в списке листьев
	PackedCoord uint64 // Упакованная координата чанка (идентичность/LOD)
}

// BrickLeaf64 описывает один занятый под-блок 4³: маска занятости и
// параллельные массивы атрибутов на каждый под-воксель.
type BrickLeaf64 struct {
	Mask     uint64
	Material [64]uint8
	Color    [64]uint32
	Normal   [64][2]uint8
	HP       [64]uint16
}

// BrickTree полный результат перестройки: узлы и листья, отсортированные
// по упакованной координате чанка.
type BrickTree struct {
	Nodes  []BrickNode
	Leaves []BrickLeaf64
}

// PackChunkKey упаковывает координату чанка в 64-битный ключ: каждая ось
// зажимается в знаковый диапазон ±2^20 и укладывается в 21 бит. Ключ задаёт
// детерминированный порядок узлов.
func PackChunkKey(chunk vec.Vec3) uint64 {
	x := clampAxis(chunk.X)
	y := clampAxis(chunk.Y)
	z := clampAxis(chunk.Z)
	return uint64(x)<<(2*coordBits) | uint64(y)<<coordBits | uint64(z)
}

func clampAxis(v int) uint64 {
	if v < -coordBias {
		v = -coordBias
	}
	if v > coordBias-1 {
		v = coordBias - 1
	}
	return uint64(v+coordBias) & coordMask
}

// ChildIndex возвращает индекс под-блока 4³ для локальной координаты чанка.
func ChildIndex(local vec.Vec3) int {
	return (local.Z>>2)<<4 | (local.Y>>2)<<2 | (local.X >> 2)
}

// SubVoxelIndex возвращает индекс под-вокселя внутри листа 4³.
func SubVoxelIndex(local vec.Vec3) int {
	return (local.Z&3)<<4 | (local.Y&3)<<2 | (local.X & 3)
}

// RebuildFromWorld перестраивает дерево целиком из снимка мира.
//
// Инкрементальных правок нет: перестройка всегда полная, чем гарантируется,
// что результат — чистая функция текущего занятого множества. Пустой мир
// даёт пустые списки узлов и листьев.
func RebuildFromWorld(w *world.VoxelWorld) *BrickTree {
	return RebuildFromSnapshot(w.SnapshotCells())
}

// RebuildFromSnapshot перестраивает дерево из готового снимка занятых вокселей.
func RebuildFromSnapshot(snapshot map[vec.Vec3]world.VoxelCell) *BrickTree {
	tree := &BrickTree{
		Nodes:  make([]BrickNode, 0),
		Leaves: make([]BrickLeaf64, 0),
	}
	if len(snapshot) == 0 {
		return tree
	}

	// Группируем воксели по чанкам
	chunks := make(map[vec.Vec3]map[vec.Vec3]world.VoxelCell)
	for coord, cell := range snapshot {
		chunkCoord := coord.ToChunkCoords()
		chunk, ok := chunks[chunkCoord]
		if !ok {
			chunk = make(map[vec.Vec3]world.VoxelCell)
			chunks[chunkCoord] = chunk
		}
		chunk[coord.LocalInChunk()] = cell
	}

	// Сортируем чанки по упакованному ключу для детерминированного вывода
	chunkCoords := make([]vec.Vec3, 0, len(chunks))
	for chunkCoord := range chunks {
		chunkCoords = append(chunkCoords, chunkCoord)
	}
	sort.Slice(chunkCoords, func(i, j int) bool {
		return PackChunkKey(chunkCoords[i]) < PackChunkKey(chunkCoords[j])
	})

	for _, chunkCoord := range chunkCoords {
		cells := chunks[chunkCoord]

		// Собираем листья по 64 под-блокам чанка
		var subBlocks [64]BrickLeaf64
		for local, cell := range cells {
			child := ChildIndex(local)
			sub := SubVoxelIndex(local)

			leaf := &subBlocks[child]
			leaf.Mask |= 1 << uint(sub)
			leaf.Material[sub] = uint8(cell.Material)
			leaf.Color[sub] = cell.Color
			leaf.Normal[sub] = cell.Normal
			leaf.HP[sub] = cell.HP
		}

		node := BrickNode{
			LeafBase:    uint32(len(tree.Leaves)),
			PackedCoord: PackChunkKey(chunkCoord),
		}

		// Пустой под-блок листа не даёт и бит узла остаётся снятым
		for child := 0; child < 64; child++ {
			if subBlocks[child].Mask == 0 {
				continue
			}
			node.ChildMask |= 1 << uint(child)
			tree.Leaves = append(tree.Leaves, subBlocks[child])
		}

		tree.Nodes = append(tree.Nodes, node)
	}

	return tree
}

// LeafFor возвращает лист под-блока child узла node (nil, если бит снят).
// Листья чанка лежат подряд начиная с LeafBase в порядке возрастания индекса
// под-блока, поэтому позиция — это количество установленных бит ниже child.
func (t *BrickTree) LeafFor(node BrickNode, child int) *BrickLeaf64 {
	if node.ChildMask&(1<<uint(child)) == 0 {
		return nil
	}
	offset := bits.OnesCount64(node.ChildMask & ((1 << uint(child)) - 1))
	return &t.Leaves[int(node.LeafBase)+offset]
}

// VoxelCount возвращает суммарное количество вокселей в дереве
func (t *BrickTree) VoxelCount() int {
	total := 0
	for _, leaf := range t.Leaves {
		total += bits.OnesCount64(leaf.Mask)
	}
	return total
}
