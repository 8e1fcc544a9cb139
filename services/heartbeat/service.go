package heartbeat

import (
	"context"
	"encoding/json"
	"time"

	"mcp3421-go/bus"
	"mcp3421-go/types"
)

const DefaultInterval = time.Second

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicState           = bus.T("heartbeat", "state")
)

// Service publishes a retained liveness record every interval.
type Service struct {
	start time.Time
	seq   uint64
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(DefaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			s.beat(conn, t)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			if d, ok := intervalOf(msg.Payload); ok {
				tick.Reset(d)
			}
		}
	}
}

func (s *Service) beat(conn *bus.Connection, now time.Time) {
	s.seq++
	conn.Publish(conn.NewMessage(topicState, types.HeartbeatState{
		Seq:      s.seq,
		UptimeMs: now.Sub(s.start).Milliseconds(),
		TS:       now,
	}, true))
}

// intervalOf accepts a typed config or its JSON form. Non-positive intervals
// are ignored.
func intervalOf(p any) (time.Duration, bool) {
	var cfg types.HeartbeatConfig
	switch v := p.(type) {
	case types.HeartbeatConfig:
		cfg = v
	case *types.HeartbeatConfig:
		if v == nil {
			return 0, false
		}
		cfg = *v
	case []byte:
		if json.Unmarshal(v, &cfg) != nil {
			return 0, false
		}
	case string:
		if json.Unmarshal([]byte(v), &cfg) != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if cfg.IntervalMs <= 0 {
		return 0, false
	}
	return time.Duration(cfg.IntervalMs) * time.Millisecond, true
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.start = time.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
