package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "taskhub.v1.Session"

// FullMethod returns the gRPC method path of a Session method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SessionServer is the server API for the Session service.
type SessionServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Confirm(context.Context, *ConfirmRequest) (*Empty, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
	UnreadCount(context.Context, *Empty) (*UnreadCountResponse, error)
	History(context.Context, *HistoryRequest) (*HistoryResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	ProjectHistory(context.Context, *ProjectHistoryRequest) (*HistoryResponse, error)
}

// UnimplementedSessionServer answers every call with codes.Unimplemented.
type UnimplementedSessionServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSessionServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedSessionServer) Confirm(context.Context, *ConfirmRequest) (*Empty, error) {
	return nil, unimplemented("Confirm")
}
func (UnimplementedSessionServer) RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error) {
	return nil, unimplemented("RequestPasswordReset")
}
func (UnimplementedSessionServer) ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error) {
	return nil, unimplemented("ResetPassword")
}
func (UnimplementedSessionServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedSessionServer) Logout(context.Context, *Empty) (*Empty, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedSessionServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedSessionServer) UnreadCount(context.Context, *Empty) (*UnreadCountResponse, error) {
	return nil, unimplemented("UnreadCount")
}
func (UnimplementedSessionServer) History(context.Context, *HistoryRequest) (*HistoryResponse, error) {
	return nil, unimplemented("History")
}
func (UnimplementedSessionServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, unimplemented("MarkRead")
}
func (UnimplementedSessionServer) ProjectHistory(context.Context, *ProjectHistoryRequest) (*HistoryResponse, error) {
	return nil, unimplemented("ProjectHistory")
}

func unary[Req, Resp any](method string, call func(SessionServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SessionServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SessionServiceDesc describes the Session service for grpc.ServiceRegistrar.
var SessionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SessionServer.Register),
		unary("Confirm", SessionServer.Confirm),
		unary("RequestPasswordReset", SessionServer.RequestPasswordReset),
		unary("ResetPassword", SessionServer.ResetPassword),
		unary("Login", SessionServer.Login),
		unary("Logout", SessionServer.Logout),
		unary("Ping", SessionServer.Ping),
		unary("UnreadCount", SessionServer.UnreadCount),
		unary("History", SessionServer.History),
		unary("MarkRead", SessionServer.MarkRead),
		unary("ProjectHistory", SessionServer.ProjectHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskhub/v1/session",
}

func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

// SessionClient is the client API for the Session service.
type SessionClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Confirm(ctx context.Context, in *ConfirmRequest, opts ...grpc.CallOption) (*Empty, error)
	RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error)
	ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
	UnreadCount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UnreadCountResponse, error)
	History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	ProjectHistory(ctx context.Context, in *ProjectHistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error)
}

type sessionClient struct {
	cc grpc.ClientConnInterface
}

// NewSessionClient returns a client whose calls always use the JSON codec.
func NewSessionClient(cc grpc.ClientConnInterface) SessionClient {
	return &sessionClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}
func (c *sessionClient) Confirm(ctx context.Context, in *ConfirmRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Confirm", in, opts)
}
func (c *sessionClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "RequestPasswordReset", in, opts)
}
func (c *sessionClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ResetPassword", in, opts)
}
func (c *sessionClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}
func (c *sessionClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Logout", in, opts)
}
func (c *sessionClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}
func (c *sessionClient) UnreadCount(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*UnreadCountResponse, error) {
	return invoke[UnreadCountResponse](ctx, c.cc, "UnreadCount", in, opts)
}
func (c *sessionClient) History(ctx context.Context, in *HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, "History", in, opts)
}
func (c *sessionClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	return invoke[MarkReadResponse](ctx, c.cc, "MarkRead", in, opts)
}
func (c *sessionClient) ProjectHistory(ctx context.Context, in *ProjectHistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	return invoke[HistoryResponse](ctx, c.cc, "ProjectHistory", in, opts)
}
