package shared

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// The classifier service uses google.protobuf.ListValue for both request
// (a list of strings) and response (a list of class indices), so the python
// side only needs the well known types and no generated stubs.
const (
	classifierServiceName = "sentiment.Classifier"
	predictMethod         = "/" + classifierServiceName + "/Predict"
)

type classifierServer interface {
	Predict(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error)
}

var classifierServiceDesc = grpc.ServiceDesc{
	ServiceName: classifierServiceName,
	HandlerType: (*classifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    predictHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "classifier.proto",
}

func RegisterClassifierServer(s grpc.ServiceRegistrar, srv *GRPCServer) {
	s.RegisterService(&classifierServiceDesc, srv)
}

func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(classifierServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: predictMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(classifierServer).Predict(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCClient is an implementation of Classifier that talks over gRPC.
type GRPCClient struct {
	conn grpc.ClientConnInterface
}

func NewGRPCClient(conn grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (m *GRPCClient) Predict(ctx context.Context, texts []string) ([]int, error) {
	values := make([]interface{}, len(texts))
	for i, text := range texts {
		values[i] = text
	}
	req, err := structpb.NewList(values)
	if err != nil {
		return nil, fmt.Errorf("error encoding predict request: %w", err)
	}

	resp := new(structpb.ListValue)
	if err := m.conn.Invoke(ctx, predictMethod, req, resp); err != nil {
		return nil, err
	}

	return decodeClasses(resp)
}

// GRPCServer is the gRPC server that GRPCClient talks to.
type GRPCServer struct {
	Impl Classifier
}

func (m *GRPCServer) Predict(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error) {
	texts := make([]string, len(req.GetValues()))
	for i, v := range req.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "input %d is not a string", i)
		}
		texts[i] = s.StringValue
	}

	classes, err := m.Impl.Predict(ctx, texts)
	if err != nil {
		return nil, err
	}

	out := &structpb.ListValue{Values: make([]*structpb.Value, len(classes))}
	for i, c := range classes {
		out.Values[i] = structpb.NewNumberValue(float64(c))
	}
	return out, nil
}

func decodeClasses(resp *structpb.ListValue) ([]int, error) {
	classes := make([]int, len(resp.GetValues()))
	for i, v := range resp.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("prediction %d is not a number", i)
		}
		if n.NumberValue != math.Trunc(n.NumberValue) {
			return nil, fmt.Errorf("prediction %d is not an integer class index: %v", i, n.NumberValue)
		}
		classes[i] = int(n.NumberValue)
	}
	return classes, nil
}
