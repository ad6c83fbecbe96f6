// Command temposerve runs the temporal engine's gRPC service.
//
// Usage:
//
//	go run ./cmd/temposerve -addr :50061 -srid 4326
//
// Flags:
//
//	-addr  Listen address (default: ":50061")
//	-srid  SRID assigned to points whose literal carries no prefix SRID
//	-geo   Treat parsed points as geodetic (default: false)
package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/kestrel-spatial/tempo/internal/basevalue"
	"github.com/kestrel-spatial/tempo/internal/tengrpc"
)

func main() {
	addr := flag.String("addr", ":50061", "listen address")
	srid := flag.Int("srid", 4326, "SRID assigned to points whose literal carries no prefix SRID")
	geodetic := flag.Bool("geo", false, "treat parsed points as geodetic")
	flag.Parse()

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("temposerve: listen on %s: %v", *addr, err)
	}

	grpcServer := grpc.NewServer()
	server := tengrpc.NewServer(basevalue.SRID(*srid), *geodetic)
	tengrpc.RegisterService(grpcServer, server)

	go func() {
		log.Printf("temposerve: listening on %s", *addr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("temposerve: serve: %v", err)
		}
	}()

	waitForShutdown(grpcServer.GracefulStop)
}

func waitForShutdown(cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("temposerve: shutting down...")
	if cleanup != nil {
		cleanup()
	}
}
