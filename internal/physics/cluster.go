package physics

import (
	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
)

const (
	// DefaultGravity ускорение свободного падения (м/с²)
	DefaultGravity = 9.81
	// DefaultSettleCeiling предельный возраст кластера до принудительного оседания (сек)
	DefaultSettleCeiling = 3.5
	// DefaultInitialLift начальная вертикальная скорость оторвавшегося кластера
	DefaultInitialLift = 1.5
)

// VoxelCluster отсоединённая группа вокселей, больше не принадлежащая миру.
// Кластер живёт от отрыва до оседания (контакт с землёй) или таймаута,
// после чего отбрасывается; его воксели в мир не возвращаются.
type VoxelCluster struct {
	Coords   []vec.Vec3    // Координаты вокселей на момент отрыва
	Center   vec.Vec3Float // Центр масс в мировых координатах
	Velocity vec.Vec3Float // Текущая скорость центра масс
	Age      float64       // Накопленный возраст (сек)
	Settled  bool          // Кластер осел и подлежит удалению
}

// ClusterPhysics владеет всеми активными падающими кластерами и интегрирует
// их движение. Грубое баллистическое приближение: визуальный фолбэк,
// а не полноценная физика твёрдого тела.
type ClusterPhysics struct {
	clusters      []*VoxelCluster
	gravity       float64
	settleCeiling float64
	initialLift   float64
}

// NewClusterPhysics создаёт интегратор с дефолтными параметрами
func NewClusterPhysics() *ClusterPhysics {
	return &ClusterPhysics{
		gravity:       DefaultGravity,
		settleCeiling: DefaultSettleCeiling,
		initialLift:   DefaultInitialLift,
	}
}

// NewClusterPhysicsWithParams создаёт интегратор с явными параметрами
func NewClusterPhysicsWithParams(gravity, settleCeiling, initialLift float64) *ClusterPhysics {
	return &ClusterPhysics{
		gravity:       gravity,
		settleCeiling: settleCeiling,
		initialLift:   initialLift,
	}
}

// SpawnComponents регистрирует отсоединённые компоненты как падающие кластеры.
//
// Для каждой непустой группы вычисляется центр масс, все её воксели
// удаляются из мира, и кластер получает небольшую начальную скорость вверх.
// На каждый созданный кластер излучается одно событие CollapseStart.
// Возвращает количество созданных кластеров.
func (cp *ClusterPhysics) SpawnComponents(w *world.VoxelWorld, components [][]vec.Vec3, audio *world.AudioBuffer) int {
	spawned := 0

	for _, component := range components {
		if len(component) == 0 {
			continue
		}

		var sum vec.Vec3Float
		material := world.MaterialID(0)
		coords := make([]vec.Vec3, len(component))
		copy(coords, component)

		for _, coord := range component {
			sum = sum.Add(world.WorldCenter(coord))
			if cell, ok := w.Remove(coord); ok {
				material = cell.Material
			}
		}

		center := sum.Scale(1.0 / float64(len(component)))

		cp.clusters = append(cp.clusters, &VoxelCluster{
			Coords:   coords,
			Center:   center,
			Velocity: vec.Vec3Float{X: 0, Y: cp.initialLift, Z: 0},
		})
		audio.Emit(world.AudioCollapseStart, center, material)
		spawned++
	}

	return spawned
}

// Tick интегрирует движение всех активных кластеров на шаг dt.
//
// Кластер оседает при достижении центром масс уровня земли (позиция
// зажимается, скорость обнуляется) либо принудительно по достижении
// предельного возраста. Осевшие кластеры удаляются из активного набора
// в том же тике с событием CollapseSettle в их финальной позиции.
func (cp *ClusterPhysics) Tick(dt float64, audio *world.AudioBuffer) {
	if len(cp.clusters) == 0 || dt <= 0 {
		return
	}

	active := cp.clusters[:0]
	for _, cluster := range cp.clusters {
		if !cluster.Settled {
			cluster.Velocity.Y -= cp.gravity * dt
			cluster.Center = cluster.Center.Add(cluster.Velocity.Scale(dt))
			cluster.Age += dt

			if cluster.Center.Y <= 0 {
				cluster.Center.Y = 0
				cluster.Velocity = vec.Vec3Float{}
				cluster.Settled = true
			} else if cluster.Age >= cp.settleCeiling {
				// Страховка от вечно летящих обломков
				cluster.Settled = true
			}
		}

		if cluster.Settled {
			audio.Emit(world.AudioCollapseSettle, cluster.Center, world.MaterialID(0))
			continue // членство кластера отбрасывается
		}
		active = append(active, cluster)
	}
	cp.clusters = active
}

// ActiveCount возвращает количество активных кластеров
func (cp *ClusterPhysics) ActiveCount() int {
	return len(cp.clusters)
}

// Clusters возвращает копию списка активных кластеров (для рендера/отладки)
func (cp *ClusterPhysics) Clusters() []VoxelCluster {
	result := make([]VoxelCluster, 0, len(cp.clusters))
	for _, c := range cp.clusters {
		result = append(result, *c)
	}
	return result
}
