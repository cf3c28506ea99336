package csvparse

// ColorCount is the number of cycling column colors.
const ColorCount = 8

// ColorClass maps a column index to one of ColorCount color tags. Columns N,
// N+8, N+16... share a tag.
func ColorClass(index int) int {
	tag := index % ColorCount
	if tag < 0 {
		tag += ColorCount
	}
	return tag
}
