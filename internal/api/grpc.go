package api

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/normalizer"
	"github.com/siliconsage/build-engine/internal/services"
)

const (
	// BuildAnalysisServiceName is the fully qualified gRPC service name.
	BuildAnalysisServiceName = "siliconsage.analysis.v1.BuildAnalysis"
	analyzeFullMethod        = "/" + BuildAnalysisServiceName + "/Analyze"
	valueTierFullMethod      = "/" + BuildAnalysisServiceName + "/ValueTier"
)

// BuildAnalysisServer is the server API of the BuildAnalysis service. Requests and responses are
// google.protobuf.Struct messages carrying the same fields as the HTTP JSON bodies.
type BuildAnalysisServer interface {
	Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ValueTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// BuildAnalysisServiceDesc describes the BuildAnalysis service for grpc.Server registration.
var BuildAnalysisServiceDesc = grpc.ServiceDesc{
	ServiceName: BuildAnalysisServiceName,
	HandlerType: (*BuildAnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: analyzeHandler},
		{MethodName: "ValueTier", Handler: valueTierHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterBuildAnalysisServer attaches srv to a gRPC service registrar.
func RegisterBuildAnalysisServer(s grpc.ServiceRegistrar, srv BuildAnalysisServer) {
	s.RegisterService(&BuildAnalysisServiceDesc, srv)
}

func analyzeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BuildAnalysisServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: analyzeFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BuildAnalysisServer).Analyze(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func valueTierHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BuildAnalysisServer).ValueTier(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: valueTierFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BuildAnalysisServer).ValueTier(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// BuildAnalysisClient calls the BuildAnalysis service.
type BuildAnalysisClient struct {
	cc grpc.ClientConnInterface
}

// NewBuildAnalysisClient wraps an established client connection.
func NewBuildAnalysisClient(cc grpc.ClientConnInterface) *BuildAnalysisClient {
	return &BuildAnalysisClient{cc: cc}
}

// Analyze invokes BuildAnalysis/Analyze.
func (c *BuildAnalysisClient) Analyze(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, analyzeFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ValueTier invokes BuildAnalysis/ValueTier.
func (c *BuildAnalysisClient) ValueTier(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, valueTierFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GRPCService adapts AnalysisService to the BuildAnalysis gRPC contract.
type GRPCService struct {
	logger  *slog.Logger
	service *services.AnalysisService
}

// NewGRPCService constructs the gRPC facade.
func NewGRPCService(logger *slog.Logger, service *services.AnalysisService) *GRPCService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCService{logger: logger, service: service}
}

// Analyze evaluates the build carried by req.
func (g *GRPCService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := FromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if g.service == nil {
		return nil, status.Error(codes.FailedPrecondition, "analysis service not configured")
	}

	result, err := g.service.Analyze(ctx, raw)
	if err != nil {
		return nil, g.toStatus(err)
	}

	payload, err := ToStruct(result)
	if err != nil {
		g.logger.Error("encode analysis result failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return payload, nil
}

// ValueTier ranks the part carried by req against the reference catalog.
func (g *GRPCService) ValueTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := FromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if g.service == nil {
		return nil, status.Error(codes.FailedPrecondition, "analysis service not configured")
	}

	result, err := g.service.ValueTier(ctx, raw)
	if err != nil {
		return nil, g.toStatus(err)
	}

	payload, err := ValueTierToStruct(result)
	if err != nil {
		g.logger.Error("encode value tier result failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return payload, nil
}

func (g *GRPCService) toStatus(err error) error {
	var fieldErr *normalizer.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return status.Error(codes.InvalidArgument, fieldErr.Error())
	case errors.Is(err, services.ErrNotReady):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, engine.ErrInvariant):
		g.logger.Error("analysis invariant violated", slog.Any("error", err))
		return status.Error(codes.Internal, "analysis failed")
	default:
		g.logger.Error("analysis failed", slog.Any("error", err))
		return status.Error(codes.Internal, "analysis failed")
	}
}
