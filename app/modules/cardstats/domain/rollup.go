package cardstatsdomain

// CombineStatMaps sums already-persisted member rollups key by key. It never
// looks at raw deck data, so its output is only as fresh as its inputs.
func CombineStatMaps(members ...StatMap) StatMap {
	out := StatMap{}
	for _, m := range members {
		for key, stat := range m {
			acc := out[key]
			acc.Add(stat)
			out[key] = acc
		}
	}
	return out
}
