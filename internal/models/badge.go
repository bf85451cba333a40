package models

type Badge string

const (
	BadgeReview0   Badge = "REVIEW_0"
	BadgeReview1   Badge = "REVIEW_1"
	BadgeReview10  Badge = "REVIEW_10"
	BadgeReview15  Badge = "REVIEW_15"
	BadgeReview20  Badge = "REVIEW_20"
	BadgeReview30  Badge = "REVIEW_30"
	BadgeReview40  Badge = "REVIEW_40"
	BadgeReview50  Badge = "REVIEW_50"
	BadgeReview60  Badge = "REVIEW_60"
	BadgeReview70  Badge = "REVIEW_70"
	BadgeReview80  Badge = "REVIEW_80"
	BadgeReview150 Badge = "REVIEW_150"
)

// Badge given to every new account
const InitialBadge = BadgeReview0

// Ordered by threshold, ascending
var badgeTiers = []struct {
	threshold int
	badge     Badge
}{
	{0, BadgeReview0},
	{1, BadgeReview1},
	{10, BadgeReview10},
	{15, BadgeReview15},
	{20, BadgeReview20},
	{30, BadgeReview30},
	{40, BadgeReview40},
	{50, BadgeReview50},
	{60, BadgeReview60},
	{70, BadgeReview70},
	{80, BadgeReview80},
	{150, BadgeReview150},
}

// BadgeForReviewCount returns the highest tier whose threshold is not above count
func BadgeForReviewCount(count int) Badge {
	badge := InitialBadge
	for _, tier := range badgeTiers {
		if count < tier.threshold {
			break
		}
		badge = tier.badge
	}
	return badge
}

// ReviewsToNextBadge returns how many reviews are missing for the next tier.
// Zero means the top tier is reached.
func ReviewsToNextBadge(count int) int {
	for _, tier := range badgeTiers {
		if count < tier.threshold {
			return tier.threshold - count
		}
	}
	return 0
}
