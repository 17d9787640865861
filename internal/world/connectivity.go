package world

import (
	"sort"

	"github.com/annel0/voxel-siege/internal/vec"
)

// DisconnectedComponents находит группы вокселей, потерявшие опору.
//
// Фронтир засевается всеми занятыми вокселями на уровне земли или ниже
// (они опорные по определению), затем расширяется по 6-связным соседям
// внутри занятого множества. Всё недостигнутое — неустойчиво; неустойчивое
// множество разбивается на связные компоненты, каждая из которых становится
// кандидатом в падающий кластер.
//
// Пустой мир даёт пустой результат. Мир не мутируется.
func DisconnectedComponents(w *VoxelWorld) [][]vec.Vec3 {
	if w.Len() == 0 {
		return nil
	}

	occupied := w.OccupiedSet()

	stable := make(map[vec.Vec3]struct{}, len(occupied))
	frontier := make([]vec.Vec3, 0)
	for coord := range occupied {
		if coord.Y <= GroundLevel {
			stable[coord] = struct{}{}
			frontier = append(frontier, coord)
		}
	}

	// BFS от опорных вокселей
	for len(frontier) > 0 {
		coord := frontier[0]
		frontier = frontier[1:]

		for _, n := range coord.Neighbors6() {
			if _, occ := occupied[n]; !occ {
				continue
			}
			if _, seen := stable[n]; seen {
				continue
			}
			stable[n] = struct{}{}
			frontier = append(frontier, n)
		}
	}

	if len(stable) == len(occupied) {
		return nil // всё достижимо от земли
	}

	unstable := make(map[vec.Vec3]struct{}, len(occupied)-len(stable))
	for coord := range occupied {
		if _, ok := stable[coord]; !ok {
			unstable[coord] = struct{}{}
		}
	}

	return partitionComponents(unstable)
}

// UnsupportedFromRegion локализованный вариант проверки опоры: пересчитывает
// только ограниченную область после одиночной правки.
//
// Стабильность засевается объединением anchored и boundarySupported (воксели,
// про которые известно, что их держит структура вне проверяемой области),
// распространяется по 6-связным соседям внутри occupied. Возвращаются
// координаты occupied, недостигнутые от опор, в детерминированном порядке.
//
// Функция идемпотентна и не мутирует входные множества. Координата,
// присутствующая и в anchored, и в occupied, всегда классифицируется опорной.
func UnsupportedFromRegion(occupied, anchored, boundarySupported map[vec.Vec3]struct{}) []vec.Vec3 {
	if len(occupied) == 0 {
		return nil
	}

	stable := make(map[vec.Vec3]struct{}, len(occupied))
	frontier := make([]vec.Vec3, 0)

	seed := func(coord vec.Vec3) {
		if _, occ := occupied[coord]; !occ {
			return
		}
		if _, seen := stable[coord]; seen {
			return
		}
		stable[coord] = struct{}{}
		frontier = append(frontier, coord)
	}

	for coord := range anchored {
		seed(coord)
	}
	for coord := range boundarySupported {
		seed(coord)
	}

	for len(frontier) > 0 {
		coord := frontier[0]
		frontier = frontier[1:]

		for _, n := range coord.Neighbors6() {
			if _, occ := occupied[n]; !occ {
				continue
			}
			if _, seen := stable[n]; seen {
				continue
			}
			stable[n] = struct{}{}
			frontier = append(frontier, n)
		}
	}

	unsupported := make([]vec.Vec3, 0)
	for coord := range occupied {
		if _, ok := stable[coord]; !ok {
			unsupported = append(unsupported, coord)
		}
	}

	sort.Slice(unsupported, func(i, j int) bool { return unsupported[i].Less(unsupported[j]) })
	return unsupported
}

// partitionComponents разбивает множество координат на 6-связные компоненты.
// Компоненты и их содержимое отсортированы для детерминированного вывода.
func partitionComponents(coords map[vec.Vec3]struct{}) [][]vec.Vec3 {
	if len(coords) == 0 {
		return nil
	}

	visited := make(map[vec.Vec3]struct{}, len(coords))
	components := make([][]vec.Vec3, 0)

	// Обходим стартовые точки в отсортированном порядке,
	// чтобы порядок компонент не зависел от итерации по карте.
	starts := make([]vec.Vec3, 0, len(coords))
	for coord := range coords {
		starts = append(starts, coord)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Less(starts[j]) })

	for _, start := range starts {
		if _, seen := visited[start]; seen {
			continue
		}

		component := make([]vec.Vec3, 0)
		frontier := []vec.Vec3{start}
		visited[start] = struct{}{}

		for len(frontier) > 0 {
			coord := frontier[0]
			frontier = frontier[1:]
			component = append(component, coord)

			for _, n := range coord.Neighbors6() {
				if _, in := coords[n]; !in {
					continue
				}
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = struct{}{}
				frontier = append(frontier, n)
			}
		}

		sort.Slice(component, func(i, j int) bool { return component[i].Less(component[j]) })
		components = append(components, component)
	}

	return components
}
