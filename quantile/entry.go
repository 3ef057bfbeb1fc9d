package quantile

// entry summarizes a contiguous rank range of observed values.
//
//   - value: the observed sample this entry represents.
//   - g: the number of observations whose rank is covered by this entry but not an earlier one.
//   - delta: the maximum possible error in this entry's running rank at the time it was inserted.
type entry struct {
	value float64
	g     int
	delta int
}

func insertEntryAt(s []entry, idx int, e entry) []entry {
	s = append(s, entry{})
	copy(s[idx+1:], s[idx:])
	s[idx] = e
	return s
}

func removeEntryAt(s []entry, idx int) []entry {
	return append(s[:idx], s[idx+1:]...)
}
