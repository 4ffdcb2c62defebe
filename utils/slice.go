package utils

// UniqueUint removes duplicate values from a slice of uints, keeping first-seen order.
func UniqueUint(slice []uint) []uint {
	seen := make(map[uint]struct{}, len(slice))
	list := make([]uint, 0, len(slice))
	for _, entry := range slice {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		list = append(list, entry)
	}
	return list
}

// DiffUint returns the values of a that are not present in b.
func DiffUint(a, b []uint) []uint {
	skip := make(map[uint]struct{}, len(b))
	for _, v := range b {
		skip[v] = struct{}{}
	}
	out := []uint{}
	for _, v := range a {
		if _, ok := skip[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
