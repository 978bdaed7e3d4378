package client

import (
	"fmt"
	"time"

	"udptun/internal/logging"
)

// Stats counts traffic over the life of the session. Packet and byte counts
// cover IP packets only, not probes.
type Stats struct {
	TxPackets  uint64
	TxBytes    uint64
	RxPackets  uint64
	RxBytes    uint64
	Dropped    uint64
	Reconnects uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("tx %d pkts/%d bytes, rx %d pkts/%d bytes, %d dropped, %d reconnects",
		s.TxPackets, s.TxBytes, s.RxPackets, s.RxBytes, s.Dropped, s.Reconnects)
}

// logStats prints the counters once per StatsInterval. A zero interval
// disables it.
func (c *Client) logStats(now time.Time) {
	if c.cfg.StatsInterval <= 0 || now.Sub(c.lastStats) < c.cfg.StatsInterval {
		return
	}
	c.lastStats = now
	logging.Infof("traffic: %s", c.stats)
}
