package cache

import "fmt"

// DraftKey namespaces a review draft session id.
func DraftKey(draftID string) string {
	return fmt.Sprintf("draft:%s", draftID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
