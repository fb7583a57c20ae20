package review

// Partition is the result of splitting one raw batch against the set of
// already-ingested review IDs. Only New flows onward to text cleaning;
// everything else is counted and excluded.
type Partition struct {
	New []RawReview

	NNew              int
	NExisting         int
	NDuplicateInBatch int
	NMissingKey       int
}

// Filter partitions a raw batch into new and already-seen records. It runs
// before any per-row text or language work because that work dominates the
// cost of a run. Records whose key is present in existing are skipped as
// existing; repeated keys inside the batch keep the first occurrence and
// count the rest as in-batch duplicates; records without a usable key are
// dropped and counted separately.
func Filter(batch []RawReview, existing map[string]struct{}) Partition {
	part := Partition{New: make([]RawReview, 0, len(batch))}
	seen := make(map[string]struct{}, len(batch))

	for _, raw := range batch {
		key, err := raw.Key()
		if err != nil {
			part.NMissingKey++
			continue
		}

		if _, ok := existing[key.SourceReviewID]; ok {
			part.NExisting++
			continue
		}
		if _, ok := seen[key.SourceReviewID]; ok {
			part.NDuplicateInBatch++
			continue
		}

		seen[key.SourceReviewID] = struct{}{}
		part.New = append(part.New, raw)
		part.NNew++
	}

	return part
}
