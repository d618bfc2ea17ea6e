package cache

import (
	"fmt"
	"time"
)

// Key formats
const (
	PagePrefix        = "yatube:page:"
	groupBySlugFormat = "groups:slug:%s"
	groupsAllKey      = "groups:all"
	blacklistFormat   = "blacklist:%s"
	rateLimitFormat   = "rl:%s:%s"
)

// TTLs
const (
	GroupsTTL = 5 * time.Minute
)

// GroupBySlugKey caches a single group looked up by slug.
func GroupBySlugKey(slug string) string {
	return fmt.Sprintf(groupBySlugFormat, slug)
}

// GroupsAllKey caches the ordered group list used by the post form.
func GroupsAllKey() string {
	return groupsAllKey
}

// BlacklistKey marks a revoked token id.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(blacklistFormat, jti)
}

// RateLimitKey counts the attempts of one visitor at one action.
func RateLimitKey(action, who string) string {
	return fmt.Sprintf(rateLimitFormat, action, who)
}
