package appstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

// The customer-reviews feed wraps every scalar in a {"label": ...} object
// and collapses single-element lists into bare objects, so the entry and
// link collections need tolerant decoding.

type label struct {
	Label string `json:"label"`
}

type feedLink struct {
	Attributes struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"attributes"`
}

type feedLinks []feedLink

func (l *feedLinks) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var links []feedLink
		if err := json.Unmarshal(data, &links); err != nil {
			return err
		}
		*l = links
		return nil
	}
	var single feedLink
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = feedLinks{single}
	return nil
}

type feedEntry struct {
	ID      label `json:"id"`
	Title   label `json:"title"`
	Content label `json:"content"`
	Rating  label `json:"im:rating"`
	Updated label `json:"updated"`
}

type feedEntries []feedEntry

func (e *feedEntries) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*e = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []feedEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*e = entries
		return nil
	}
	var single feedEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*e = feedEntries{single}
	return nil
}

type feedBody struct {
	Link  feedLinks   `json:"link"`
	Entry feedEntries `json:"entry"`
}

type feedDocument struct {
	Feed feedBody `json:"feed"`
}

func (d *feedDocument) hasSelfLink() bool {
	for _, link := range d.Feed.Link {
		if link.Attributes.Rel == "self" {
			return true
		}
	}
	return false
}

// parseEntry converts one feed entry into a raw review. The feed's leading
// app-metadata record carries no rating and no usable ID; such entries are
// reported as not-a-review rather than errors.
func parseEntry(entry feedEntry, req FetchRequest) (review.RawReview, bool) {
	id := strings.TrimSpace(entry.ID.Label)
	if id == "" {
		return review.RawReview{}, false
	}

	rating, err := strconv.Atoi(strings.TrimSpace(entry.Rating.Label))
	if err != nil || rating < 1 || rating > 5 {
		return review.RawReview{}, false
	}

	var reviewDate time.Time
	if raw := strings.TrimSpace(entry.Updated.Label); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			reviewDate = ts.UTC()
		}
	}

	return review.RawReview{
		Source:         req.Source,
		AppName:        req.AppName,
		Country:        req.Country,
		SourceReviewID: id,
		Rating:         rating,
		Title:          strings.TrimSpace(entry.Title.Label),
		Content:        entry.Content.Label,
		ReviewDate:     reviewDate,
	}, true
}
