package match

import (
	"testing"

	"github.com/bookswap-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owned(owner, title, author string, cond domain.Condition) domain.OwnedBook {
	return domain.OwnedBook{
		BookID:           owner + "-" + title,
		Title:            title,
		Author:           author,
		Condition:        cond,
		OwnerID:          owner,
		OwnerDisplayName: "name-" + owner,
	}
}

func wanted(user, title, author string, cond domain.Condition) domain.WantedBook {
	return domain.WantedBook{
		BookID:           user + "-w-" + title,
		Title:            title,
		Author:           author,
		DesiredCondition: cond,
		UserID:           user,
	}
}

func TestCompute_ExactMatchScoresThree(t *testing.T) {
	// B wants "Dune" at any condition, A owns it. Raw 5, final (5+1)/2 = 3.
	myWanted := []domain.WantedBook{wanted("b", "Dune", "Frank Herbert", domain.ConditionAny)}
	others := []domain.OwnedBook{owned("a", "Dune", "Frank Herbert", domain.ConditionGood)}

	got := Compute("b", nil, myWanted, others, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].OtherUserID)
	assert.Equal(t, 3, got[0].Score)
	require.Len(t, got[0].TheyOfferThatIWant, 1)
	assert.Equal(t, "Dune", got[0].TheyOfferThatIWant[0].Title)
	assert.Empty(t, got[0].IOfferThatTheyWant)
}

func TestCompute_TierPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		ownedBook domain.OwnedBook
		wantRaw   int
	}{
		{"exact title and author", owned("a", "Dune", "Frank Herbert", domain.ConditionGood), scoreExact},
		{"author only", owned("a", "Children of Dune", "Frank Herbert", domain.ConditionGood), scoreAuthor},
		{"fuzzy shared token", owned("a", "Dune Encyclopedia", "Willis McNelly", domain.ConditionGood), scoreFuzzy},
		{"no overlap", owned("a", "Ubik", "Philip K. Dick", domain.ConditionGood), 0},
	}
	myWanted := []domain.WantedBook{wanted("b", "Dune", "Frank Herbert", domain.ConditionAny)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRaw, tierScore(myWanted, tt.ownedBook))
		})
	}
}

func TestCompute_CaseInsensitive(t *testing.T) {
	myWanted := []domain.WantedBook{wanted("b", "DUNE", "frank herbert", domain.ConditionAny)}
	b := owned("a", "dune", "Frank Herbert", domain.ConditionFair)
	assert.Equal(t, scoreExact, tierScore(myWanted, b))
}

func TestCompute_ConditionWildcard(t *testing.T) {
	conditions := []domain.Condition{
		domain.ConditionLikeNew, domain.ConditionVeryGood, domain.ConditionGood,
		domain.ConditionFair, domain.ConditionPoor,
	}
	myWanted := []domain.WantedBook{wanted("b", "Dune", "Frank Herbert", domain.ConditionAny)}
	for _, c := range conditions {
		assert.Equal(t, scoreExact, tierScore(myWanted, owned("a", "Dune", "Frank Herbert", c)),
			"wildcard should match condition %s", c)
	}
}

func TestCompute_ConditionGate(t *testing.T) {
	// Title and author match but the desired condition does not, so the exact
	// tier is blocked. The author tier is blocked by the same gate; no
	// contribution at all.
	myWanted := []domain.WantedBook{wanted("b", "Dune", "Frank Herbert", domain.ConditionLikeNew)}
	b := owned("a", "Dune", "Frank Herbert", domain.ConditionPoor)
	assert.Equal(t, 0, tierScore(myWanted, b))
}

func TestCompute_FuzzyNeedsLongToken(t *testing.T) {
	// "of" and "the" are too short to count as shared tokens.
	myWanted := []domain.WantedBook{wanted("b", "Lord of the Flies", "William Golding", domain.ConditionAny)}
	b := owned("a", "The Grapes of Wrath", "John Steinbeck", domain.ConditionGood)
	assert.Equal(t, 0, tierScore(myWanted, b))

	b2 := owned("a", "Flies and Other Stories", "Somebody Else", domain.ConditionGood)
	assert.Equal(t, scoreFuzzy, tierScore(myWanted, b2))
}

func TestCompute_BothDirectionsAccumulate(t *testing.T) {
	// They offer an exact hit (5) and I offer an exact hit (5): raw 10,
	// final (10+1)/2 = 5.
	myOwned := []domain.OwnedBook{owned("me", "Hyperion", "Dan Simmons", domain.ConditionGood)}
	myWanted := []domain.WantedBook{wanted("me", "Dune", "Frank Herbert", domain.ConditionAny)}
	othersOwned := []domain.OwnedBook{owned("a", "Dune", "Frank Herbert", domain.ConditionGood)}
	othersWanted := []domain.WantedBook{wanted("a", "Hyperion", "Dan Simmons", domain.ConditionAny)}

	got := Compute("me", myOwned, myWanted, othersOwned, othersWanted)

	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Score)
	assert.Len(t, got[0].TheyOfferThatIWant, 1)
	assert.Len(t, got[0].IOfferThatTheyWant, 1)
}

func TestCompute_ScoreClampedAtTen(t *testing.T) {
	// Five exact hits raw 25, halved 13, clamped to 10.
	titles := []string{"Dune", "Dune Messiah", "Children of Dune", "God Emperor of Dune", "Heretics of Dune"}
	var myWanted []domain.WantedBook
	var othersOwned []domain.OwnedBook
	for _, title := range titles {
		myWanted = append(myWanted, wanted("me", title, "Frank Herbert", domain.ConditionAny))
		othersOwned = append(othersOwned, owned("a", title, "Frank Herbert", domain.ConditionGood))
	}

	got := Compute("me", nil, myWanted, othersOwned, nil)

	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Score)
}

func TestCompute_NoOverlapOmitsCandidate(t *testing.T) {
	myWanted := []domain.WantedBook{wanted("me", "Dune", "Frank Herbert", domain.ConditionAny)}
	othersOwned := []domain.OwnedBook{owned("a", "Ubik", "Philip K. Dick", domain.ConditionGood)}

	got := Compute("me", nil, myWanted, othersOwned, nil)
	assert.Empty(t, got)
}

func TestCompute_WantedOnlyUserNeverCandidate(t *testing.T) {
	// User "a" owns nothing but wants my book. They are not discoverable.
	myOwned := []domain.OwnedBook{owned("me", "Hyperion", "Dan Simmons", domain.ConditionGood)}
	othersWanted := []domain.WantedBook{wanted("a", "Hyperion", "Dan Simmons", domain.ConditionAny)}

	got := Compute("me", myOwned, nil, nil, othersWanted)
	assert.Empty(t, got)
}

func TestCompute_OwnBooksExcluded(t *testing.T) {
	myWanted := []domain.WantedBook{wanted("me", "Dune", "Frank Herbert", domain.ConditionAny)}
	// ListAll feeds the engine everyone's books including mine.
	othersOwned := []domain.OwnedBook{owned("me", "Dune", "Frank Herbert", domain.ConditionGood)}

	got := Compute("me", nil, myWanted, othersOwned, nil)
	assert.Empty(t, got)
}

func TestCompute_SortedDescendingStableTies(t *testing.T) {
	myWanted := []domain.WantedBook{
		wanted("me", "Dune", "Frank Herbert", domain.ConditionAny),
		wanted("me", "Hyperion", "Dan Simmons", domain.ConditionAny),
		wanted("me", "Neuromancer", "William Gibson", domain.ConditionAny),
	}
	othersOwned := []domain.OwnedBook{
		// "low1" fuzzy only, raw 1 final 1.
		owned("low1", "Dune Encyclopedia", "Willis McNelly", domain.ConditionGood),
		// "high" exact, raw 5 final 3.
		owned("high", "Dune", "Frank Herbert", domain.ConditionGood),
		// "low2" fuzzy only, raw 1 final 1. Ties with low1, discovered later.
		owned("low2", "Hyperion Cantos Companion", "Somebody", domain.ConditionGood),
	}

	got := Compute("me", nil, myWanted, othersOwned, nil)

	require.Len(t, got, 3)
	assert.Equal(t, "high", got[0].OtherUserID)
	assert.Equal(t, "low1", got[1].OtherUserID)
	assert.Equal(t, "low2", got[2].OtherUserID)

	// Identical input produces identical output.
	again := Compute("me", nil, myWanted, othersOwned, nil)
	assert.Equal(t, got, again)
}

func TestClampScore_RoundHalfUp(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {7, 4}, {19, 10}, {20, 10}, {100, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampScore(tt.raw), "raw %d", tt.raw)
	}
}
