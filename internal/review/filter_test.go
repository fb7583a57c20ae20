package review

import "testing"

func rawWithID(id string) RawReview {
	return RawReview{AppName: "MySpotty", Country: "fr", SourceReviewID: id}
}

func TestFilter_PartitionsBatch(t *testing.T) {
	t.Parallel()

	// "a" repeats inside the batch, "c" is already ingested and the last
	// record has no review ID.
	batch := []RawReview{
		rawWithID("a"),
		rawWithID("b"),
		rawWithID("a"),
		rawWithID("c"),
		{AppName: "MySpotty", Country: "fr"},
	}
	existing := map[string]struct{}{"c": {}}

	part := Filter(batch, existing)

	if part.NNew != 2 {
		t.Fatalf("expected 2 new records, got %d", part.NNew)
	}
	if part.NExisting != 1 {
		t.Fatalf("expected 1 existing record, got %d", part.NExisting)
	}
	if part.NDuplicateInBatch != 1 {
		t.Fatalf("expected 1 in-batch duplicate, got %d", part.NDuplicateInBatch)
	}
	if part.NMissingKey != 1 {
		t.Fatalf("expected 1 missing-key record, got %d", part.NMissingKey)
	}
	if len(part.New) != 2 || part.New[0].SourceReviewID != "a" || part.New[1].SourceReviewID != "b" {
		t.Fatalf("unexpected new records: %+v", part.New)
	}
}

func TestFilter_KeepsFirstDuplicateOccurrence(t *testing.T) {
	t.Parallel()

	first := rawWithID("a")
	first.Content = "first"
	second := rawWithID("a")
	second.Content = "second"

	part := Filter([]RawReview{first, second}, nil)

	if part.NNew != 1 || part.NDuplicateInBatch != 1 {
		t.Fatalf("unexpected counts: new=%d dup=%d", part.NNew, part.NDuplicateInBatch)
	}
	if part.New[0].Content != "first" {
		t.Fatalf("expected the first occurrence to survive, got %q", part.New[0].Content)
	}
}

func TestFilter_EmptyExistingSet(t *testing.T) {
	t.Parallel()

	part := Filter([]RawReview{rawWithID("a"), rawWithID("b")}, map[string]struct{}{})
	if part.NNew != 2 || part.NExisting != 0 {
		t.Fatalf("unexpected counts with empty existing set: %+v", part)
	}
}
