package weather

import "sort"

// PickBest ranks cities driest first, then coolest, then by name so the
// choice does not depend on map iteration order. ok is false for an empty
// map, in which case the default snapshot is returned.
func PickBest(cw CityWeather) (city string, snap Snapshot, ok bool) {
	if len(cw) == 0 {
		return "", DefaultSnapshot(), false
	}

	names := make([]string, 0, len(cw))
	for name := range cw {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := cw[names[i]], cw[names[j]]
		if a.Precipitation != b.Precipitation {
			return a.Precipitation < b.Precipitation
		}
		if a.Temperature != b.Temperature {
			return a.Temperature < b.Temperature
		}
		return names[i] < names[j]
	})

	return names[0], cw[names[0]], true
}

// ResolveCity picks the city to run in and the snapshot to reason with.
//
// An explicit city (already constrained to the allowed set) always wins; if
// its fetch failed, the best city's snapshot stands in for its weather while
// the city itself is kept. Without an explicit city the best city is used,
// falling back to the first allowed city when no weather came back at all.
func ResolveCity(explicit string, cw CityWeather, cities Cities) (string, Snapshot) {
	if explicit != "" {
		if snap, ok := cw[explicit]; ok {
			return explicit, snap
		}
		_, snap, _ := PickBest(cw)
		return explicit, snap
	}

	best, snap, ok := PickBest(cw)
	if ok {
		return best, snap
	}
	if len(cities) > 0 {
		return cities[0].Name, snap
	}
	return "", snap
}
