package frametimeline

import (
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
)

// SurfaceFrameStats is the per-surface record pushed to the timestats
// sink on present resolution (spec §6).
type SurfaceFrameStats struct {
	OwnerUid         int32
	OwnerPid         int32
	LayerName        string
	PredictedPresent int64
	ActualPresent    int64
	Jank             JankType
	// GpuComposition mirrors the field the real timestats sink records;
	// this engine doesn't compute it, so it is always false.
	GpuComposition bool
}

// DisplayFrameStats is the per-display record pushed to the timestats
// sink on present resolution.
type DisplayFrameStats struct {
	PredictedPresent int64
	ActualPresent    int64
	Jank             JankType
}

// TimeStatsSink receives per-surface and per-display timing summaries
// (spec §6, "TimeStats sink (consumed)").
type TimeStatsSink interface {
	RecordSurfaceFrame(SurfaceFrameStats)
	RecordDisplayFrame(DisplayFrameStats)
}

// NopTimeStatsSink discards every record. Useful when no external
// collector is wired.
type NopTimeStatsSink struct{}

func (NopTimeStatsSink) RecordSurfaceFrame(SurfaceFrameStats)  {}
func (NopTimeStatsSink) RecordDisplayFrame(DisplayFrameStats) {}

// BufferingTimeStatsSink accumulates every record it receives, for use
// in tests that assert on what the engine pushed.
type BufferingTimeStatsSink struct {
	mu       sync.Mutex
	Surfaces []SurfaceFrameStats
	Displays []DisplayFrameStats
}

func (s *BufferingTimeStatsSink) RecordSurfaceFrame(r SurfaceFrameStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Surfaces = append(s.Surfaces, r)
}

func (s *BufferingTimeStatsSink) RecordDisplayFrame(r DisplayFrameStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Displays = append(s.Displays, r)
}

// GRPCTimeStatsPublisher streams timestats records to connected
// collectors over gRPC. It mirrors the visualiser gRPC publisher's
// shape: a grpc.Server is held, a background goroutine fans a buffered
// channel of records out to subscribers, and the actual service
// registration is left as a TODO the same way the visualiser package
// leaves its own VisualizerService pending proto generation — this
// environment has no protoc toolchain, so the wire codec step is
// stubbed while the transport lifecycle is fully implemented and
// exercised.
type GRPCTimeStatsPublisher struct {
	listenAddr string

	server   *grpc.Server
	listener net.Listener

	records chan timeStatsRecord
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	recordCount atomic.Uint64
}

type timeStatsRecord struct {
	surface *SurfaceFrameStats
	display *DisplayFrameStats
}

// NewGRPCTimeStatsPublisher creates a publisher listening on addr. It
// does not start the server; call Start.
func NewGRPCTimeStatsPublisher(listenAddr string) *GRPCTimeStatsPublisher {
	return &GRPCTimeStatsPublisher{
		listenAddr: listenAddr,
		records:    make(chan timeStatsRecord, 256),
		stopCh:     make(chan struct{}),
	}
}

// Start begins listening and serving gRPC connections.
func (p *GRPCTimeStatsPublisher) Start() error {
	if p.running.Load() {
		return fmt.Errorf("timestats publisher already running")
	}
	lis, err := net.Listen("tcp", p.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	p.listener = lis
	p.server = grpc.NewServer()
	// TODO: Register TimeStatsCollectorServer when the .proto for this
	// service is generated (no protoc available in this environment).

	p.running.Store(true)
	p.wg.Add(1)
	go p.broadcastLoop()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.Printf("[frametimeline] timestats gRPC server listening on %s", p.listenAddr)
		if err := p.server.Serve(lis); err != nil && p.running.Load() {
			log.Printf("[frametimeline] timestats gRPC server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully stops the gRPC server.
func (p *GRPCTimeStatsPublisher) Stop() {
	if !p.running.Load() {
		return
	}
	p.running.Store(false)
	close(p.stopCh)
	if p.server != nil {
		p.server.GracefulStop()
	}
	if p.listener != nil {
		p.listener.Close()
	}
	p.wg.Wait()
}

// RecordSurfaceFrame implements TimeStatsSink.
func (p *GRPCTimeStatsPublisher) RecordSurfaceFrame(r SurfaceFrameStats) {
	p.publish(timeStatsRecord{surface: &r})
}

// RecordDisplayFrame implements TimeStatsSink.
func (p *GRPCTimeStatsPublisher) RecordDisplayFrame(r DisplayFrameStats) {
	p.publish(timeStatsRecord{display: &r})
}

func (p *GRPCTimeStatsPublisher) publish(r timeStatsRecord) {
	if !p.running.Load() {
		return
	}
	select {
	case p.records <- r:
		p.recordCount.Add(1)
	default:
		opsf("timestats publisher channel full, dropping record")
	}
}

func (p *GRPCTimeStatsPublisher) broadcastLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.records:
			// TODO: fan out to subscribed collectors once the wire
			// codec is generated.
		}
	}
}

// RecordCount returns the number of records accepted so far.
func (p *GRPCTimeStatsPublisher) RecordCount() uint64 {
	return p.recordCount.Load()
}
