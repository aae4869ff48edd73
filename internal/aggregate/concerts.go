package aggregate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/showgoers/showgoers/internal/models"
)

// DateLayout is the storage format for concert dates. Dates are calendar
// days, never instants; in this layout lexical order equals chronological
// order, so partitioning compares strings and stays immune to timezone
// offsets creeping in through time.Parse.
const DateLayout = "2006-01-02"

// PartitionConcerts splits concerts into upcoming and past relative to the
// calendar date of now. A concert dated exactly today is upcoming. Upcoming
// is sorted soonest first, past most recent first; ties keep the input
// order. Concerts with a malformed date are kept in upcoming so they stay
// visible instead of silently disappearing.
func PartitionConcerts(concerts []models.Concert, now time.Time) (upcoming, past []models.Concert) {
	today := now.Format(DateLayout)

	upcoming = make([]models.Concert, 0, len(concerts))
	past = make([]models.Concert, 0)
	for _, concert := range concerts {
		if _, err := time.Parse(DateLayout, concert.Date); err != nil {
			upcoming = append(upcoming, concert)
			continue
		}
		if concert.Date >= today {
			upcoming = append(upcoming, concert)
		} else {
			past = append(past, concert)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date < upcoming[j].Date
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].Date > past[j].Date
	})
	return upcoming, past
}

type interestKey struct {
	concertID uuid.UUID
	userID    uuid.UUID
}

// InterestIndex answers membership and count questions against an
// already-loaded interest set. No method touches the database.
type InterestIndex struct {
	pairs  map[interestKey]struct{}
	counts map[uuid.UUID]int
}

func NewInterestIndex(interests []models.Interest) *InterestIndex {
	ix := &InterestIndex{
		pairs:  make(map[interestKey]struct{}, len(interests)),
		counts: make(map[uuid.UUID]int),
	}
	for _, interest := range interests {
		key := interestKey{concertID: interest.ConcertID, userID: interest.UserID}
		if _, dup := ix.pairs[key]; dup {
			continue
		}
		ix.pairs[key] = struct{}{}
		ix.counts[interest.ConcertID]++
	}
	return ix
}

// IsInterested reports whether userID holds a mark on concertID. A nil
// userID means no signed-in viewer and is always false.
func (ix *InterestIndex) IsInterested(concertID, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	_, ok := ix.pairs[interestKey{concertID: concertID, userID: userID}]
	return ok
}

// CountFor returns the number of marks on concertID across all users.
func (ix *InterestIndex) CountFor(concertID uuid.UUID) int {
	return ix.counts[concertID]
}

// CommentCounts maps concert id to comment count. It is built from a single
// grouped query per view rather than one query per concert.
type CommentCounts map[uuid.UUID]int64

func (cc CommentCounts) CountFor(concertID uuid.UUID) int64 {
	return cc[concertID]
}
