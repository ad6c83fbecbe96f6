package tengrpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/period"
	"github.com/kestrel-spatial/tempo/internal/restrict"
	"github.com/kestrel-spatial/tempo/internal/temporal"
	"github.com/kestrel-spatial/tempo/internal/tparse"
	"github.com/kestrel-spatial/tempo/internal/trajectory"
	"github.com/kestrel-spatial/tempo/internal/tsync"
)

// Server implements TemporalEngineServer, exercising the engine's parse,
// restrict, synchronize and trajectory packages over temporal-point values
// — the one concrete value type a wire message can name without itself
// becoming generic (spec.md's V type parameter has no wire representation).
type Server struct {
	Geodetic bool
	SRID     basevalue.SRID
}

// NewServer creates a Server for temporal-point values in the given SRID.
func NewServer(srid basevalue.SRID, geodetic bool) *Server {
	return &Server{SRID: srid, Geodetic: geodetic}
}

var _ TemporalEngineServer = (*Server)(nil)

// withSRID prefixes text with the server's SRID when the literal carries no
// SRID prefix of its own.
func (s *Server) withSRID(text string) string {
	if s.SRID != 0 && !strings.HasPrefix(strings.TrimSpace(text), "SRID=") {
		return fmt.Sprintf("SRID=%d;%s", s.SRID, text)
	}
	return text
}

func (s *Server) parseSequence(text string) (*temporal.Sequence[basevalue.Point], error) {
	parsed, err := tparse.ParsePoint(s.withSRID(text), s.Geodetic, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return nil, err
	}
	if parsed.Kind != temporal.KindSequence {
		return nil, fmt.Errorf("tengrpc: expected a sequence, got %v", parsed.Kind)
	}
	return parsed.Sequence, nil
}

func (s *Server) Parse(ctx context.Context, req *ParseRequest) (*ParseResponse, error) {
	parsed, err := tparse.ParsePoint(s.withSRID(req.Text), s.Geodetic, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return nil, err
	}

	resp := &ParseResponse{Kind: parsed.Kind.String()}
	switch parsed.Kind {
	case temporal.KindInstant:
		resp.InstantCount = 1
		resp.Canonical = parsed.Instant.String()
	case temporal.KindInstantSet:
		resp.InstantCount = int32(parsed.InstantSet.NumInstants())
		resp.Canonical = parsed.InstantSet.String()
	case temporal.KindSequence:
		resp.InstantCount = int32(parsed.Sequence.NumInstants())
		resp.Canonical = parsed.Sequence.String()
	case temporal.KindSequenceSet:
		resp.InstantCount = 0
		for _, seq := range parsed.SequenceSet.Sequences() {
			resp.InstantCount += int32(seq.NumInstants())
		}
		resp.Canonical = parsed.SequenceSet.String()
	}
	return resp, nil
}

func (s *Server) Restrict(ctx context.Context, req *RestrictRequest) (*RestrictResponse, error) {
	seq, err := s.parseSequence(req.Text)
	if err != nil {
		return nil, err
	}

	lower, err := period.ParseTimestamp(req.LowerTimestamp)
	if err != nil {
		return nil, fmt.Errorf("tengrpc: lower_timestamp: %w", err)
	}
	upper, err := period.ParseTimestamp(req.UpperTimestamp)
	if err != nil {
		return nil, fmt.Errorf("tengrpc: upper_timestamp: %w", err)
	}
	p, err := period.NewPeriod(lower, upper, req.LowerInclusive, req.UpperInclusive)
	if err != nil {
		return nil, err
	}

	restricted, ok, err := restrict.SliceToPeriod(seq, p, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &RestrictResponse{Ok: false}, nil
	}
	return &RestrictResponse{Ok: true, Text: restricted.String()}, nil
}

func (s *Server) Synchronize(ctx context.Context, req *SynchronizeRequest) (*SynchronizeResponse, error) {
	a, err := s.parseSequence(req.SequenceAText)
	if err != nil {
		return nil, err
	}
	b, err := s.parseSequence(req.SequenceBText)
	if err != nil {
		return nil, err
	}

	synced, ok, err := tsync.SynchronizeSequences(a, b, temporal.PointOps, temporal.PointOps, true, tsync.DistanceMinimumCrossing)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &SynchronizeResponse{}, nil
	}

	syncA, err := temporal.NewSequence(synced.InstantsA, synced.LowerInc, synced.UpperInc, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return nil, err
	}
	syncB, err := temporal.NewSequence(synced.InstantsB, synced.LowerInc, synced.UpperInc, temporal.PointOps, temporal.BuildPointTrajectory)
	if err != nil {
		return nil, err
	}

	return &SynchronizeResponse{
		SequenceAText: syncA.String(),
		SequenceBText: syncB.String(),
		InstantCount:  int32(syncA.NumInstants()),
	}, nil
}

func (s *Server) NearestApproachDistance(ctx context.Context, req *NearestApproachDistanceRequest) (*NearestApproachDistanceResponse, error) {
	a, err := s.parseSequence(req.SequenceAText)
	if err != nil {
		return nil, err
	}
	b, err := s.parseSequence(req.SequenceBText)
	if err != nil {
		return nil, err
	}

	dist, ok, err := trajectory.NAD(a, b)
	if err != nil {
		return nil, err
	}
	return &NearestApproachDistanceResponse{Distance: dist, Ok: ok}, nil
}
