package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AccountSessionKey returns the cache key holding an account's active session JTI.
func (r *CacheKeyStruct) AccountSessionKey(accountID int) string {
	return fmt.Sprintf("login:%d", accountID)
}

// TeamSubmissionChannel returns the Redis PubSub channel that carries
// attempt submission events for one team.
func (r *CacheKeyStruct) TeamSubmissionChannel(team string) string {
	return fmt.Sprintf("team:%s:submissions", team)
}

var CacheKey = NewCacheKeyStruct()
