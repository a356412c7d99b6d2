package blocks

import "strings"

// InferType scores free text against the keyword set of each block type and
// returns the best match. The score for a type is the number of its distinct
// keywords present as substrings of the lowercased text. Ties resolve to the
// first type reaching the maximum score in typeTable declaration order, so
// results are deterministic. Returns TypeUnknown when no keyword hits at all.
func InferType(text string) BlockType {
	lowered := strings.ToLower(text)

	best := TypeUnknown
	bestScore := 0

	for _, def := range typeTable {
		score := 0
		for _, kw := range def.Keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = def.Type
			bestScore = score
		}
	}

	return best
}
