package world

import (
	"github.com/annel0/voxel-siege/internal/vec"
)

const (
	// ChunkEdge размер чанка в вокселях по каждой оси
	ChunkEdge = 16
	// SubBlockEdge размер листового под-блока brick-дерева
	SubBlockEdge = 4
	// VoxelEdge длина ребра вокселя в мировых единицах
	VoxelEdge = 1.0
	// GroundLevel вертикальная координата опорной плоскости: воксели с Y <= GroundLevel
	// считаются опирающимися на землю
	GroundLevel = 0
)

// WorldCenter возвращает мировую позицию центра вокселя
// (координата + пол-вокселя по каждой оси).
func WorldCenter(c vec.Vec3) vec.Vec3Float {
	return vec.Vec3Float{
		X: (float64(c.X) + 0.5) * VoxelEdge,
		Y: (float64(c.Y) + 0.5) * VoxelEdge,
		Z: (float64(c.Z) + 0.5) * VoxelEdge,
	}
}

// VoxelWorld хранит занятые воксели мира в разреженном виде.
// Координата присутствует в карте тогда и только тогда, когда воксель занят.
//
// Мир принадлежит ровно одному контексту исполнения (воркеру) и не содержит
// внутренних блокировок: весь внешний доступ идёт через протокол команд/событий
// либо через снимки.
type VoxelWorld struct {
	cells       map[vec.Vec3]*VoxelCell
	dirtyChunks map[vec.Vec3]struct{} // Чанки, изменённые с последнего drain
}

// NewVoxelWorld создаёт пустой воксельный мир
func NewVoxelWorld() *VoxelWorld {
	return &VoxelWorld{
		cells:       make(map[vec.Vec3]*VoxelCell),
		dirtyChunks: make(map[vec.Vec3]struct{}),
	}
}

// Place вставляет (или перезаписывает) воксель и помечает его чанк грязным.
func (w *VoxelWorld) Place(coord vec.Vec3, cell VoxelCell) {
	c := cell
	w.cells[coord] = &c
	w.markDirty(coord)
}

// Remove удаляет воксель, если он существует, и возвращает удалённую ячейку.
func (w *VoxelWorld) Remove(coord vec.Vec3) (VoxelCell, bool) {
	cell, exists := w.cells[coord]
	if !exists {
		return VoxelCell{}, false
	}
	delete(w.cells, coord)
	w.markDirty(coord)
	return *cell, true
}

// Get возвращает копию вокселя по координате
func (w *VoxelWorld) Get(coord vec.Vec3) (VoxelCell, bool) {
	cell, exists := w.cells[coord]
	if !exists {
		return VoxelCell{}, false
	}
	return *cell, true
}

// GetMut возвращает указатель на воксель для мутации на месте (nil, если пусто).
// Вызывающий обязан пометить воксель грязным через MarkMutated после изменения.
func (w *VoxelWorld) GetMut(coord vec.Vec3) *VoxelCell {
	return w.cells[coord]
}

// MarkMutated помечает чанк вокселя грязным после мутации через GetMut.
func (w *VoxelWorld) MarkMutated(coord vec.Vec3) {
	w.markDirty(coord)
}

// Occupied проверяет занятость координаты
func (w *VoxelWorld) Occupied(coord vec.Vec3) bool {
	_, exists := w.cells[coord]
	return exists
}

// Len возвращает количество занятых вокселей
func (w *VoxelWorld) Len() int {
	return len(w.cells)
}

// OccupiedCoords возвращает материализованный список всех занятых координат.
// Порядок не определён; детерминированность обеспечивают потребители.
func (w *VoxelWorld) OccupiedCoords() []vec.Vec3 {
	coords := make([]vec.Vec3, 0, len(w.cells))
	for coord := range w.cells {
		coords = append(coords, coord)
	}
	return coords
}

// OccupiedSet возвращает копию множества занятых координат
func (w *VoxelWorld) OccupiedSet() map[vec.Vec3]struct{} {
	set := make(map[vec.Vec3]struct{}, len(w.cells))
	for coord := range w.cells {
		set[coord] = struct{}{}
	}
	return set
}

// SnapshotCells возвращает полную копию занятых вокселей для массовых
// потребителей (brick-дерево, анализ связности).
func (w *VoxelWorld) SnapshotCells() map[vec.Vec3]VoxelCell {
	snapshot := make(map[vec.Vec3]VoxelCell, len(w.cells))
	for coord, cell := range w.cells {
		snapshot[coord] = *cell
	}
	return snapshot
}

// DrainDirtyChunks возвращает и очищает накопленное множество грязных чанков.
// Единственный механизм передачи изменений рендер-потребителю; вызывается
// не более одного раза за тик воркера, иначе маркеры теряются.
func (w *VoxelWorld) DrainDirtyChunks() []vec.Vec3 {
	if len(w.dirtyChunks) == 0 {
		return nil
	}

	chunks := make([]vec.Vec3, 0, len(w.dirtyChunks))
	for chunk := range w.dirtyChunks {
		chunks = append(chunks, chunk)
	}
	w.dirtyChunks = make(map[vec.Vec3]struct{})
	return chunks
}

// DirtyChunkCount возвращает количество накопленных грязных чанков
func (w *VoxelWorld) DirtyChunkCount() int {
	return len(w.dirtyChunks)
}

// markDirty помечает чанк, содержащий воксель, как изменённый
func (w *VoxelWorld) markDirty(coord vec.Vec3) {
	w.dirtyChunks[coord.ToChunkCoords()] = struct{}{}
}
