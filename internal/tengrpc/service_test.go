package tengrpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func dialTestServer(t *testing.T, server TemporalEngineServer) *Client {
	t.Helper()

	const bufSize = 1 << 20
	lis := bufconn.Listen(bufSize)
	grpcServer := grpc.NewServer()
	RegisterService(grpcServer, server)

	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func TestParseRoundTripsOverGRPC(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, NewServer(4326, false))
	resp, err := client.Parse(context.Background(), &ParseRequest{
		Text: "[POINT(0 0)@2001-01-01 00:00:00, POINT(3 4)@2001-01-01 00:00:01]",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sequence", resp.Kind)
	assert.EqualValues(t, 2, resp.InstantCount)
}

func TestRestrictOverGRPC(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, NewServer(4326, false))
	resp, err := client.Restrict(context.Background(), &RestrictRequest{
		Text:           "[POINT(0 0)@2001-01-01 00:00:00, POINT(10 0)@2001-01-01 00:00:10]",
		LowerTimestamp: "2001-01-01 00:00:02",
		UpperTimestamp: "2001-01-01 00:00:05",
		LowerInclusive: true,
		UpperInclusive: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Ok)
	assert.NotEmpty(t, resp.Text)
}

func TestSynchronizeOverGRPC(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, NewServer(4326, false))
	resp, err := client.Synchronize(context.Background(), &SynchronizeRequest{
		SequenceAText: "[POINT(0 0)@2001-01-01 00:00:00, POINT(4 4)@2001-01-01 00:00:04]",
		SequenceBText: "[POINT(0 4)@2001-01-01 00:00:00, POINT(4 0)@2001-01-01 00:00:04]",
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resp.InstantCount, int32(2))
}

func TestNearestApproachDistanceOverGRPC(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, NewServer(4326, false))
	resp, err := client.NearestApproachDistance(context.Background(), &NearestApproachDistanceRequest{
		SequenceAText: "[POINT(0 0)@2001-01-01 00:00:00, POINT(4 4)@2001-01-01 00:00:04]",
		SequenceBText: "[POINT(0 4)@2001-01-01 00:00:00, POINT(4 0)@2001-01-01 00:00:04]",
	})
	require.NoError(t, err)
	require.True(t, resp.Ok)
	assert.InDelta(t, 0.0, resp.Distance, 1e-9)
}

func TestParseRejectsMalformedLiteral(t *testing.T) {
	t.Parallel()

	client := dialTestServer(t, NewServer(4326, false))
	_, err := client.Parse(context.Background(), &ParseRequest{Text: "not a temporal value"})
	require.Error(t, err)
}
