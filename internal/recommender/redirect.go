package recommender

import "Eat42/internal/catalog"

// Family returns the tags that define what counts as a similar item: the
// type tags, or the taste tags for items that have no type tag at all.
func Family(e catalog.Entry) []string {
	if tags := e.TypeTags(); len(tags) > 0 {
		return tags
	}
	return e.TasteTags()
}

// substitutePool returns the pool items that share a family tag with orig,
// skipping the names in skip. An item without family tags has no
// substitutes.
func substitutePool(orig catalog.Entry, pool []catalog.Entry, skip map[string]bool) []catalog.Entry {
	family := Family(orig)
	if len(family) == 0 {
		return nil
	}

	var same []catalog.Entry
	for _, e := range pool {
		if !skip[e.Name] && e.SharesAny(family) {
			same = append(same, e)
		}
	}
	return same
}

// runnerUp picks the alternate for a redirect from the ranked remainder:
// the first item carrying every taste tag of the original, else the first
// sharing any, else simply the next best.
func runnerUp(ranked []Candidate, tastes []string) *Candidate {
	if len(ranked) == 0 {
		return nil
	}

	for i := range ranked {
		if hasAll(ranked[i].Entry, tastes) {
			return &ranked[i]
		}
	}
	for i := range ranked {
		if ranked[i].Entry.SharesAny(tastes) {
			return &ranked[i]
		}
	}
	return &ranked[0]
}

func hasAll(e catalog.Entry, tags []string) bool {
	for _, t := range tags {
		if !e.HasCategory(t) {
			return false
		}
	}
	return true
}
