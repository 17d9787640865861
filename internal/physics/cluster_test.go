package physics

import (
	"testing"

	"github.com/annel0/voxel-siege/internal/vec"
	"github.com/annel0/voxel-siege/internal/world"
	"github.com/stretchr/testify/assert"
)

func buildWorld(coords ...vec.Vec3) *world.VoxelWorld {
	w := world.NewVoxelWorld()
	for _, c := range coords {
		w.Place(c, world.NewCell(world.MatStone, vec.Vec3Float{Y: 1}))
	}
	return w
}

func TestSpawnComponents_RemovesVoxelsAndEmitsCollapseStart(t *testing.T) {
	coords := []vec.Vec3{{X: 2, Y: 4, Z: 2}, {X: 2, Y: 5, Z: 2}}
	w := buildWorld(coords...)
	cp := NewClusterPhysics()
	var audio world.AudioBuffer

	spawned := cp.SpawnComponents(w, [][]vec.Vec3{coords}, &audio)

	assert.Equal(t, 1, spawned, "Одна компонента — один кластер")
	assert.Equal(t, 0, w.Len(), "Воксели кластера удалены из мира")
	assert.Equal(t, 1, cp.ActiveCount())

	events := audio.Drain()
	if assert.Len(t, events, 1) {
		assert.Equal(t, world.AudioCollapseStart, events[0].Kind)
		// центр масс двух вокселей (2,4,2)-(2,5,2) — середина между центрами
		assert.InDelta(t, 2.5, events[0].WorldPos.X, 1e-9)
		assert.InDelta(t, 5.0, events[0].WorldPos.Y, 1e-9)
	}

	clusters := cp.Clusters()
	assert.Equal(t, DefaultInitialLift, clusters[0].Velocity.Y, "Начальный подброс вверх")
}

func TestSpawnComponents_SkipsEmptyGroups(t *testing.T) {
	w := buildWorld()
	cp := NewClusterPhysics()
	var audio world.AudioBuffer

	spawned := cp.SpawnComponents(w, [][]vec.Vec3{{}, nil}, &audio)
	assert.Equal(t, 0, spawned, "Пустые группы не создают кластеров")
	assert.Equal(t, 0, audio.Len())
}

func TestTick_ClusterSettlesOnGround(t *testing.T) {
	coords := []vec.Vec3{{X: 0, Y: 3, Z: 0}}
	w := buildWorld(coords...)
	cp := NewClusterPhysics()
	var audio world.AudioBuffer
	cp.SpawnComponents(w, [][]vec.Vec3{coords}, &audio)
	audio.Drain()

	dt := 1.0 / 60.0
	ticks := 0
	for cp.ActiveCount() > 0 {
		cp.Tick(dt, &audio)
		ticks++
		if ticks > 10000 {
			t.Fatal("Кластер не осел за ограниченное число тиков")
		}
	}

	events := audio.Drain()
	if assert.Len(t, events, 1) {
		assert.Equal(t, world.AudioCollapseSettle, events[0].Kind)
		assert.Equal(t, 0.0, events[0].WorldPos.Y, "Осевший кластер зажат на уровне земли")
	}
}

func TestTick_AgeCeilingForcesSettle(t *testing.T) {
	coords := []vec.Vec3{{X: 0, Y: 100, Z: 0}}
	w := buildWorld(coords...)
	// нулевая гравитация: без таймаута кластер завис бы навсегда
	cp := NewClusterPhysicsWithParams(0, 0.5, 0)
	var audio world.AudioBuffer
	cp.SpawnComponents(w, [][]vec.Vec3{coords}, &audio)
	audio.Drain()

	dt := 0.1
	ticks := 0
	for cp.ActiveCount() > 0 {
		cp.Tick(dt, &audio)
		ticks++
		if ticks > 100 {
			t.Fatal("Таймаут возраста не сработал")
		}
	}

	assert.LessOrEqual(t, ticks, 6, "Кластер должен осесть по таймауту ~0.5с при dt=0.1")
	events := audio.Drain()
	if assert.Len(t, events, 1) {
		assert.Equal(t, world.AudioCollapseSettle, events[0].Kind)
		assert.Greater(t, events[0].WorldPos.Y, 0.0, "Принудительное оседание не зажимает к земле")
	}
}

func TestTick_NoClustersIsNoop(t *testing.T) {
	cp := NewClusterPhysics()
	var audio world.AudioBuffer
	cp.Tick(0.016, &audio)
	assert.Equal(t, 0, audio.Len(), "Tick без кластеров не порождает событий")
}

func TestTick_MultipleClustersIndependent(t *testing.T) {
	low := []vec.Vec3{{X: 0, Y: 1, Z: 0}}
	high := []vec.Vec3{{X: 9, Y: 50, Z: 0}}
	w := buildWorld(append(low, high...)...)
	cp := NewClusterPhysics()
	var audio world.AudioBuffer
	cp.SpawnComponents(w, [][]vec.Vec3{low, high}, &audio)
	audio.Drain()

	assert.Equal(t, 2, cp.ActiveCount())

	// низкий кластер оседает раньше высокого
	dt := 1.0 / 60.0
	for i := 0; i < 120 && cp.ActiveCount() > 1; i++ {
		cp.Tick(dt, &audio)
	}
	assert.Equal(t, 1, cp.ActiveCount(), "Низкий кластер осел, высокий ещё падает")
}
