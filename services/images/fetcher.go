package images

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sjsage522/newsworker/helpers"
	"sjsage522/newsworker/logger"
	"sjsage522/newsworker/pkg/errors"
	"sjsage522/newsworker/services/cache"
)

// BlockKeyPrefix prefixes the cache key that blocks an image host after a rate limit
const BlockKeyPrefix = "image_rate_limited:"

// Fetcher downloads article images into the output directory
type Fetcher struct {
	Dir       string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	log       *logger.Logger
}

// NewFetcher creates a new image fetcher. A nil cache disables host blocking.
func NewFetcher(dir string, cacheSvc cache.CacheService, blockTime time.Duration) *Fetcher {
	return &Fetcher{
		Dir:       dir,
		CacheSvc:  cacheSvc,
		BlockTime: blockTime,
		log:       logger.ForImages(),
	}
}

// FileName derives the local file name of an image URL: the last path
// segment after percent-decoding, without a query or fragment. Invalid
// escapes are kept as they are.
func FileName(imageURL string) (string, error) {
	decoded, err := url.PathUnescape(imageURL)
	if err != nil {
		decoded = imageURL
	}

	name := decoded[strings.LastIndex(decoded, "/")+1:]
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("no file name in %q", imageURL)
	}
	return name, nil
}

// Fetch downloads imageURL and returns the saved path, or "" on any failure
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) string {
	name, err := FileName(imageURL)
	if err != nil {
		f.log.Warn().Err(errors.NewImageDownload("images", "invalid image URL "+imageURL, err)).Msg("Image skipped")
		return ""
	}

	requestURL := escapeStrayPercents(imageURL)

	blockKey := f.blockKey(requestURL)
	if f.blocked(blockKey) {
		f.log.Warn().Str("url", imageURL).Str("key", blockKey).Msg("Image host is rate limited, skipping download")
		return ""
	}

	data, err := helpers.FetchSimply(ctx, requestURL)
	if err != nil {
		if errors.IsRateLimit(err) {
			f.block(blockKey)
		}
		f.log.Warn().Err(errors.NewImageDownload("images", "failed to download "+imageURL, err)).Msg("Image download failed")
		return ""
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		f.log.Error().Err(errors.NewImageDownload("images", "failed to create "+f.Dir, err)).Msg("Image not saved")
		return ""
	}

	target := filepath.Join(f.Dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		f.log.Error().Err(errors.NewImageDownload("images", "failed to write "+target, err)).Msg("Image not saved")
		return ""
	}

	f.log.Debug().Str("url", imageURL).Str("path", target).Int("bytes", len(data)).Msg("Image saved")
	return target
}

// escapeStrayPercents turns a "%" that starts no valid escape into "%25" so
// the URL can still be requested
func escapeStrayPercents(rawURL string) string {
	if !strings.Contains(rawURL, "%") {
		return rawURL
	}

	var b strings.Builder
	for i := 0; i < len(rawURL); i++ {
		if rawURL[i] == '%' && (i+2 >= len(rawURL) || !isHex(rawURL[i+1]) || !isHex(rawURL[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(rawURL[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func (f *Fetcher) blockKey(imageURL string) string {
	host := "unknown"
	if u, err := url.Parse(imageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return BlockKeyPrefix + host
}

func (f *Fetcher) blocked(key string) bool {
	if f.CacheSvc == nil {
		return false
	}
	_, err := f.CacheSvc.Get(key)
	return err == nil
}

func (f *Fetcher) block(key string) {
	if f.CacheSvc == nil || f.BlockTime <= 0 {
		return
	}
	seconds := fmt.Sprintf("%d", f.BlockTime/time.Second)
	if err := f.CacheSvc.Set(key, []byte(seconds), f.BlockTime); err != nil {
		f.log.Warn().Err(errors.NewCache("images", "failed to store block key", err)).Msg("Rate limit not recorded")
		return
	}
	f.log.Warn().Str("key", key).Str("block", seconds+"s").Msg("Image host rate limited")
}
