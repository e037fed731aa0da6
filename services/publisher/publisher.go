package publisher

// Publisher sends scraped articles to downstream consumers
type Publisher interface {
	// Publish sends message under key to one of the output streams
	Publish(key string, message []byte) error

	// TrimStreams caps every output stream at the configured length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
