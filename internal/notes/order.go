package notes

import "sort"

// Less reports whether a ranks before b: pinned notes first, then the most
// recently updated.
func Less(a, b Note) bool {
	if a.Pinned != b.Pinned {
		return a.Pinned
	}
	return a.UpdatedAt > b.UpdatedAt
}

// Sort returns a sorted copy of ns. Ties keep their input order.
func Sort(ns []Note) []Note {
	out := make([]Note, len(ns))
	copy(out, ns)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// IsSorted reports whether ns already satisfies the ordering.
func IsSorted(ns []Note) bool {
	for i := 1; i < len(ns); i++ {
		if Less(ns[i], ns[i-1]) {
			return false
		}
	}
	return true
}
