package batch

import (
	"net"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthReporter serves the standard gRPC health service. The overall
// service "" is SERVING while the run is alive; each phase is its own service.
// A nil *HealthReporter ignores every call.
type HealthReporter struct {
	lis    net.Listener
	srv    *grpc.Server
	health *health.Server
}

// StartHealthServer listens on addr and marks every service NOT_SERVING.
func StartHealthServer(addr string, services ...string) (*HealthReporter, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	hs := health.NewServer()
	for _, s := range services {
		hs.SetServingStatus(s, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Error(err)
		}
	}()
	log.Infof("[Pipeline] health server listening on %s", lis.Addr())
	return &HealthReporter{lis: lis, srv: srv, health: hs}, nil
}

func (h *HealthReporter) Addr() string {
	if h == nil {
		return ""
	}
	return h.lis.Addr().String()
}

// Serving marks a committed phase.
func (h *HealthReporter) Serving(service string) {
	if h == nil {
		return
	}
	h.health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
}

// NotServing marks a failed phase.
func (h *HealthReporter) NotServing(service string) {
	if h == nil {
		return
	}
	h.health.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
}

func (h *HealthReporter) Stop() {
	if h == nil {
		return
	}
	h.health.Shutdown()
	h.srv.Stop()
}
