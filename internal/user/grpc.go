package user

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
)

// The permission service is described by hand on top of protobuf well known
// types: the request is the user id, the reply the list of permission tokens.
const (
	permissionServiceName   = "fulfillment.user.v1.PermissionService"
	getUserPermissionsRoute = "/" + permissionServiceName + "/GetUserPermissions"
)

// PermissionServer is implemented by Service.
type PermissionServer interface {
	GetUserPermissions(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.ListValue, error)
}

var permissionServiceDesc = grpc.ServiceDesc{
	ServiceName: permissionServiceName,
	HandlerType: (*PermissionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetUserPermissions", Handler: getUserPermissionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "user/v1/permission.proto",
}

func RegisterPermissionServer(s grpc.ServiceRegistrar, srv PermissionServer) {
	s.RegisterService(&permissionServiceDesc, srv)
}

func getUserPermissionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PermissionServer).GetUserPermissions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getUserPermissionsRoute}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PermissionServer).GetUserPermissions(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// Service serves role permissions over gRPC.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUserPermissions(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	if in.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user id is required")
	}
	perms, err := s.repo.UserPermissions(ctx, in.GetValue())
	switch {
	case errors.Is(err, apperr.ErrUserNotFound):
		return nil, status.Error(codes.NotFound, "user not found")
	case errors.Is(err, apperr.ErrRoleNotAssigned):
		return nil, status.Error(codes.FailedPrecondition, "role not assigned")
	case err != nil:
		return nil, status.Errorf(codes.Internal, "permissions error: %v", err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(perms))}
	for _, p := range perms {
		out.Values = append(out.Values, structpb.NewStringValue(p))
	}
	return out, nil
}

// PermissionClient asks the user service for a user's permissions.
type PermissionClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// DialPermissions opens a non-blocking connection; RPCs wait for readiness.
func DialPermissions(addr string) (*PermissionClient, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, nil, err
	}
	return NewPermissionClient(conn), conn, nil
}

func NewPermissionClient(conn grpc.ClientConnInterface) *PermissionClient {
	return &PermissionClient{conn: conn, timeout: 3 * time.Second}
}

func (c *PermissionClient) UserPermissions(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.ListValue)
	err := c.conn.Invoke(ctx, getUserPermissionsRoute, wrapperspb.Int64(userID), out, grpc.WaitForReady(true))
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound:
			return nil, apperr.ErrUserNotFound
		case codes.FailedPrecondition:
			return nil, apperr.ErrRoleNotAssigned
		}
		return nil, err
	}
	perms := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		perms = append(perms, v.GetStringValue())
	}
	return perms, nil
}
