package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/moolapay/agency-service/internal/application"
	"github.com/moolapay/agency-service/internal/domain"
)

// AgencyInternalService is the service-to-service surface. Sibling services
// use it to check the status of a commission transaction without going
// through the agent-facing HTTP API.
type AgencyInternalService interface {
	GetTransactionStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type AgencyInternalServer struct {
	service *application.Service
}

func NewAgencyInternalServer(service *application.Service) *AgencyInternalServer {
	return &AgencyInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AgencyInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "moolapay.agency.v1.AgencyInternalService",
		HandlerType: (*AgencyInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetTransactionStatus",
				Handler:    getTransactionStatusHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "moolapay/agency/v1/agency_internal.proto",
	}, svc)
}

func (s *AgencyInternalServer) GetTransactionStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	idVal := req.GetFields()["transaction_id"]
	if idVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing transaction_id")
	}
	transactionID := idVal.GetStringValue()
	if transactionID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing transaction_id")
	}

	entry, err := s.service.LookupTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "transaction not found")
		}
		return nil, status.Errorf(codes.Internal, "lookup transaction: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"transaction_id":     transactionID,
		"status":             string(entry.Status),
		"third_party_status": entry.ThirdPartyStatus,
		"service_name":       entry.ServiceName,
		"agent_id":           entry.AgentID,
		"amount":             entry.Amount,
		"created_at":         entry.CreatedAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func getTransactionStatusHandler(svc AgencyInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.GetTransactionStatus(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/moolapay.agency.v1.AgencyInternalService/GetTransactionStatus",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.GetTransactionStatus(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
