package clients

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"guestflow/internal/models"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

const (
	analysisCachePrefix = "feedback:analysis:"
	analysisCacheTTL    = 24 * time.Hour
)

// ValkeyClient caches per-text analysis results so re-uploaded reviews skip
// the completion model.
type ValkeyClient struct {
	Client valkey.Client
	mu     sync.Mutex
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		client, err := newValkeyConn()
		if err != nil {
			panic(fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err))
		}
		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{Client: client}
	})
	return valkeyInstance
}

func newValkeyConn() (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{os.Getenv("VALKEY_INIT_ADDRESS")},
		Password:         os.Getenv("VALKEY_PASSWORD"),
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if os.Getenv("VALKEY_TLS") == "true" {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return nil, err
	}
	return client, nil
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

// TextKey derives the cache key for a review text.
func TextKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetCachedAnalysis returns a previously stored result for this text, or
// false on a miss. Cache errors count as misses.
func (vc *ValkeyClient) GetCachedAnalysis(ctx context.Context, text string) (*models.AnalysisResult, bool) {
	key := analysisCachePrefix + TextKey(text)
	res := vc.doWithRetry(ctx, vc.Client.B().Get().Key(key).Build(), 3)
	if res.Error() != nil {
		return nil, false
	}
	raw, err := res.AsBytes()
	if err != nil {
		return nil, false
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Warn("[ValkeyClient] discarding unreadable cached analysis",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return &result, true
}

// CacheAnalysis stores a result for this text with a TTL. Failures are
// logged and swallowed: a cold cache never blocks ingestion.
func (vc *ValkeyClient) CacheAnalysis(ctx context.Context, text string, result *models.AnalysisResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		slog.Warn("[ValkeyClient] failed to marshal analysis for cache",
			slog.String("error", err.Error()))
		return
	}

	key := analysisCachePrefix + TextKey(text)
	res := vc.doWithRetry(ctx, vc.Client.B().Set().Key(key).Value(string(raw)).Ex(analysisCacheTTL).Build(), 3)
	if err := res.Error(); err != nil {
		slog.Warn("[ValkeyClient] failed to cache analysis",
			slog.String("key", key),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}
	}
}

func (vc *ValkeyClient) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}
		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		time.Sleep(250 * time.Millisecond)
	}
	return result
}

func (vc *ValkeyClient) recreateClient() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[ValkeyClient] Recreate failed and was recovered from panic",
				slog.Any("panic", r))
		}
	}()

	vc.mu.Lock()
	defer vc.mu.Unlock()
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	vc.Client.Close()

	client, err := newValkeyConn()
	if err != nil {
		panic(fmt.Errorf("[ValkeyClient] failed to recreate Valkey: %w", err))
	}
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
	vc.Client = client
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
