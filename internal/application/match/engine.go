package match

import (
	"sort"
	"strings"

	"github.com/bookswap-api/internal/domain"
)

// Score contributions per match tier. A book is evaluated against a wanted
// list in strict precedence order and contributes at most once.
const (
	scoreExact  = 5
	scoreAuthor = 2
	scoreFuzzy  = 1

	// Tokens must be longer than this to count for a fuzzy title match.
	fuzzyTokenMinLen = 3
)

// Compute ranks every other user as a swap candidate for userID. Candidates
// are discovered from othersOwned, so a user with only wanted books never
// becomes a candidate. The raw score is the sum of tier contributions from
// both directions; the final score is min(round(raw/2), 10) with round half
// up. Ties keep discovery order, which is the order of first appearance in
// othersOwned, so identical inputs always produce identical output.
func Compute(userID string, myOwned []domain.OwnedBook, myWanted []domain.WantedBook, othersOwned []domain.OwnedBook, othersWanted []domain.WantedBook) []domain.MatchCandidate {
	type bucket struct {
		name         string
		neighborhood string
		owned        []domain.OwnedBook
		wanted       []domain.WantedBook
	}

	order := make([]string, 0)
	byUser := make(map[string]*bucket)
	for _, b := range othersOwned {
		if b.OwnerID == userID {
			continue
		}
		bk, ok := byUser[b.OwnerID]
		if !ok {
			bk = &bucket{name: b.OwnerDisplayName, neighborhood: b.OwnerNeighborhood}
			byUser[b.OwnerID] = bk
			order = append(order, b.OwnerID)
		}
		bk.owned = append(bk.owned, b)
	}
	for _, w := range othersWanted {
		if bk, ok := byUser[w.UserID]; ok {
			bk.wanted = append(bk.wanted, w)
		}
	}

	out := make([]domain.MatchCandidate, 0, len(order))
	for _, uid := range order {
		bk := byUser[uid]
		total := 0
		var theyOffer, iOffer []domain.OwnedBook
		for _, b := range bk.owned {
			if pts := tierScore(myWanted, b); pts > 0 {
				theyOffer = append(theyOffer, b)
				total += pts
			}
		}
		for _, b := range myOwned {
			if pts := tierScore(bk.wanted, b); pts > 0 {
				iOffer = append(iOffer, b)
				total += pts
			}
		}
		if len(theyOffer) == 0 && len(iOffer) == 0 {
			continue
		}
		out = append(out, domain.MatchCandidate{
			OtherUserID:           uid,
			OtherUserName:         bk.name,
			OtherUserNeighborhood: bk.neighborhood,
			TheyOfferThatIWant:    theyOffer,
			IOfferThatTheyWant:    iOffer,
			Score:                 clampScore(total),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// tierScore evaluates owned book b against a wanted list. Exact match wins
// over author match wins over fuzzy title match; the first tier that fires
// decides the contribution, no double counting across wanted entries.
func tierScore(wanted []domain.WantedBook, b domain.OwnedBook) int {
	for _, w := range wanted {
		if strings.EqualFold(w.Title, b.Title) &&
			strings.EqualFold(w.Author, b.Author) &&
			conditionCompatible(w.DesiredCondition, b.Condition) {
			return scoreExact
		}
	}
	for _, w := range wanted {
		if strings.EqualFold(w.Author, b.Author) &&
			conditionCompatible(w.DesiredCondition, b.Condition) {
			return scoreAuthor
		}
	}
	for _, w := range wanted {
		if sharesLongToken(w.Title, b.Title) &&
			conditionCompatible(w.DesiredCondition, b.Condition) {
			return scoreFuzzy
		}
	}
	return 0
}

func conditionCompatible(want, have domain.Condition) bool {
	if want == domain.ConditionAny {
		return true
	}
	return strings.EqualFold(string(want), string(have))
}

// sharesLongToken reports whether the two titles share any whitespace token
// longer than fuzzyTokenMinLen, case-insensitively.
func sharesLongToken(a, b string) bool {
	seen := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(a)) {
		if len(t) > fuzzyTokenMinLen {
			seen[t] = struct{}{}
		}
	}
	for _, t := range strings.Fields(strings.ToLower(b)) {
		if len(t) > fuzzyTokenMinLen {
			if _, ok := seen[t]; ok {
				return true
			}
		}
	}
	return false
}

// clampScore halves the raw sum with round half up and caps the result at 10.
func clampScore(total int) int {
	s := (total + 1) / 2
	if s > 10 {
		s = 10
	}
	return s
}
