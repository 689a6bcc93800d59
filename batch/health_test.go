package batch

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthReporter(t *testing.T) {
	h, err := StartHealthServer("127.0.0.1:0", "frequent1", "frequent2")
	require.NoError(t, err)
	defer h.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(ctx, h.Addr(), grpc.WithInsecure(), grpc.WithBlock())
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	status := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.Status
	}

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status("frequent1"))

	h.Serving("frequent1")
	h.NotServing("frequent2")
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status("frequent1"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status("frequent2"))

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Error(t, err)
}

func TestNilHealthReporter(t *testing.T) {
	var h *HealthReporter
	assert.NotPanics(t, func() {
		h.Serving("frequent1")
		h.NotServing("frequent1")
		h.Stop()
	})
	assert.Equal(t, "", h.Addr())
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func dialHealth(t *testing.T, ctx context.Context, addr string) healthpb.HealthClient {
	t.Helper()
	conn, err := grpc.DialContext(ctx, addr, grpc.WithInsecure(), grpc.WithBlock())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestRunAprioriReportsPhaseHealth(t *testing.T) {
	addr := freeAddr(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seen := map[string]map[string]healthpb.HealthCheckResponse_ServingStatus{}
	fr := &fakeRunner{fail: map[string]error{"frequent2": errors.New("boom")}}
	fr.before = func(cfg mapreduce.JobConfig) {
		client := dialHealth(t, ctx, addr)
		statuses := map[string]healthpb.HealthCheckResponse_ServingStatus{}
		for _, svc := range []string{"", "frequent1", "frequent2"} {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
			require.NoError(t, err)
			statuses[svc] = resp.Status
		}
		seen[cfg.Job.Name] = statuses
	}

	_, err := RunApriori(ctx, AprioriConfig{
		Inputs:     []string{writeInput(t, ";a;;;;;FR")},
		OutputRoot: t.TempDir(),
		MinSupport: 1,
		HealthAddr: addr,
		Runner:     fr,
	})
	require.Error(t, err)

	// while phase 1 runs nothing is committed
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, seen["frequent1"][""])
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, seen["frequent1"]["frequent1"])
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, seen["frequent1"]["frequent2"])
	// phase 1 committed before phase 2 started
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, seen["frequent2"]["frequent1"])
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, seen["frequent2"]["frequent2"])
}

func TestRunAprioriFailedPhaseNeverServes(t *testing.T) {
	addr := freeAddr(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var watched []healthpb.HealthCheckResponse_ServingStatus
	done := make(chan struct{})
	fr := &fakeRunner{fail: map[string]error{"frequent1": errors.New("boom")}}
	fr.before = func(cfg mapreduce.JobConfig) {
		stream, err := dialHealth(t, ctx, addr).Watch(ctx, &healthpb.HealthCheckRequest{Service: cfg.Job.Name})
		require.NoError(t, err)
		first, err := stream.Recv()
		require.NoError(t, err)
		watched = append(watched, first.Status)
		go func() {
			defer close(done)
			for {
				resp, err := stream.Recv()
				if err != nil {
					return
				}
				watched = append(watched, resp.Status)
			}
		}()
	}

	_, err := RunApriori(ctx, AprioriConfig{
		Inputs:     []string{writeInput(t, ";a;;;;;FR")},
		OutputRoot: t.TempDir(),
		MinSupport: 1,
		HealthAddr: addr,
		Runner:     fr,
	})
	require.Error(t, err)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("health watch did not end after the run stopped")
	}
	require.NotEmpty(t, watched)
	assert.NotContains(t, watched, healthpb.HealthCheckResponse_SERVING)
}
