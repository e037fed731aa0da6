package internal

import (
	"sjsage522/newsworker/services/cache"
	"sjsage522/newsworker/services/publisher"
	"sjsage522/newsworker/services/workitems"
)

// Dependencies holds all service dependencies. Cache and Publisher may be nil.
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Source    workitems.Source
}
