package document

// Merge appends incoming chunks to existing ones, skipping any chunk whose key
// is already present. Order is first-seen. It returns the merged list and the
// chunks that were actually added. Neither input is modified.
func Merge(existing []Chunk, incoming ...[]Chunk) (merged []Chunk, added []Chunk) {
	seen := make(map[string]struct{}, len(existing))
	merged = make([]Chunk, 0, len(existing))
	for _, c := range existing {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, c)
	}
	for _, batch := range incoming {
		for _, c := range batch {
			key := c.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, c)
			added = append(added, c)
		}
	}
	return merged, added
}

// Dedupe removes repeated keys from chunks, keeping the first occurrence.
func Dedupe(chunks ...[]Chunk) []Chunk {
	merged, _ := Merge(nil, chunks...)
	return merged
}

// FilterTrusted returns only the chunks that come from the curated corpora.
func FilterTrusted(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Type.Trusted() {
			out = append(out, c)
		}
	}
	return out
}
