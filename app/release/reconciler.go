package release

// Reconcile merges freshly scraped candidates into the existing collection.
//
// Both slices are newest-first. Candidates whose ID is already known, either
// from the collection or from earlier in the same batch, are dropped. New
// records end up in front of all existing ones in their original relative
// order; existing records keep their positions relative to each other.
// added lists the new records oldest-first, in the order they were merged.
// Neither input is modified.
func Reconcile(existing, candidates []Release) (updated []Release, added []Release) {
	known := make(map[string]struct{}, len(existing)+len(candidates))
	for _, r := range existing {
		known[r.ID] = struct{}{}
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		if _, ok := known[c.ID]; ok {
			continue
		}
		known[c.ID] = struct{}{}
		added = append(added, c)
	}

	// Prepending each addition in turn is the same as placing the additions,
	// newest first, ahead of the existing collection.
	updated = make([]Release, 0, len(existing)+len(added))
	for i := len(added) - 1; i >= 0; i-- {
		updated = append(updated, added[i])
	}
	updated = append(updated, existing...)

	return updated, added
}

// CountNew reports how many candidates are absent from known, counting each
// ID once. Newly counted IDs are added to known.
func CountNew(known map[string]struct{}, candidates []Release) int {
	n := 0
	for _, c := range candidates {
		if _, ok := known[c.ID]; ok {
			continue
		}
		known[c.ID] = struct{}{}
		n++
	}
	return n
}

// IDSet returns the set of IDs in releases.
func IDSet(releases []Release) map[string]struct{} {
	set := make(map[string]struct{}, len(releases))
	for _, r := range releases {
		set[r.ID] = struct{}{}
	}
	return set
}
