package conversation

import "github.com/google/uuid"

// PairKey normalizes an unordered participant pair into the "min:max"
// form stored in conversations.pair_key. The unique index on that column
// is what guarantees at most one conversation per pair, even when two
// acceptances race.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as < bs {
		return as + ":" + bs
	}
	return bs + ":" + as
}
