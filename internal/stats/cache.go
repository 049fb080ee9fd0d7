package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps rendered payloads per user. Every key carries the user's generation,
// so bumping it on Invalidate orphans all older entries until they expire.
type Cache struct {
	cache          *freecache.Cache
	ttl            func(report string) time.Duration
	metricsManager *metrics.Manager

	mu          sync.Mutex
	generations map[int]uint64
}

func NewCache(sizeMB int, ttl func(report string) time.Duration, metricsManager *metrics.Manager) *Cache {
	return &Cache{
		cache:          freecache.NewCache(sizeMB * megabyte),
		ttl:            ttl,
		metricsManager: metricsManager,
		generations:    map[int]uint64{},
	}
}

// Key names one cached payload. It pins the user's generation at the time it is
// taken, so a payload computed before an Invalidate is never stored as current.
type Key struct {
	userID int
	report string
	raw    []byte
}

func (c *Cache) Key(userID int, report, params string) Key {
	c.mu.Lock()
	gen := c.generations[userID]
	c.mu.Unlock()
	return Key{
		userID: userID,
		report: report,
		raw:    []byte(fmt.Sprintf("stats::%d::%d::%s::%s", userID, gen, report, params)),
	}
}

func (c *Cache) Get(key Key) ([]byte, bool) {
	payload, err := c.cache.Get(key.raw)
	if err != nil {
		c.metricsManager.CounterStatsCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	c.metricsManager.CounterStatsCache.WithLabelValues("hit").Inc()
	return payload, true
}

func (c *Cache) Set(key Key, payload []byte) {
	ttl := c.ttl(ttlGroup(key.report))
	if ttl <= 0 {
		return
	}
	if err := c.cache.Set(key.raw, payload, int(ttl.Seconds())); err != nil {
		log.Errorf("set stats cache %s for user %d: %s", key.report, key.userID, err)
	}
}

func (c *Cache) Invalidate(userID int) {
	c.mu.Lock()
	c.generations[userID]++
	c.mu.Unlock()
	log.Tracef("stats cache invalidated for user %d", userID)
}

// ttlGroup maps a report to the TTL setting it shares with related reports.
func ttlGroup(report string) string {
	switch report {
	case reportDashboard:
		return "dashboard"
	case reportProgress:
		return "progresso"
	case reportRankings:
		return "rankings"
	case reportEvolution, reportWeightEvolution:
		return "evolucao"
	case reportMuscleGroups, reportVolume:
		return "grupos"
	default:
		return "default"
	}
}
