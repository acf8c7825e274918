// Package grpc serves the taskhub.v1.Session API: account flows, login and
// logout, and the message retrieval queries of authenticated users.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/taskhub/internal/logging"
	pb "github.com/dmitrijs2005/taskhub/internal/proto"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	pb.UnimplementedSessionServer
	address  string
	accounts accountSvc
	sessions sessionSvc
	inbox    inboxSvc
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as accountSvc, ss sessionSvc, is inboxSvc) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: as,
		sessions: ss,
		inbox:    is,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.sessionTokenInterceptor))
	pb.RegisterSessionServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully once ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
