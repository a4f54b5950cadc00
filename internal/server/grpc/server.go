package internalgrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "calendar.Events"

const (
	errRequestNotProvided  = "request is not provided"
	errIncorrectRequest    = "incorrect request"
	errInternalServerError = "internal server error"
	errEventNotFound       = "event not found"
)

type Config struct {
	Host    string
	Port    int
	Enabled bool
}

type Server struct {
	grpcServer *grpc.Server
	app        *app.App
	addr       string
}

// EventsServer is the set of calls served under ServiceName. Requests and
// replies carry events in their JSON shape.
type EventsServer interface {
	ListByMonth(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	GetEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	CreateEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	UpdateEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error)
	DeleteEvent(ctx context.Context, r *structpb.Struct) (*empty.Empty, error)
}

func NewServer(config Config, app *app.App) *Server {
	s := &Server{app: app, addr: net.JoinHostPort(config.Host, strconv.Itoa(config.Port))}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(loggingHandler))
	RegisterEventsServer(s.grpcServer, s)
	return s
}

func (s *Server) Start(_ context.Context) error {
	lsn, err := net.Listen("tcp", s.addr)
	if err != nil {
		log.Errorf("failed to listen grpc endpoint: %v", err)
		return err
	}

	log.Printf("starting grpc server on %s", s.addr)
	return s.Serve(lsn)
}

func (s *Server) Serve(lsn net.Listener) error {
	return s.grpcServer.Serve(lsn)
}

func (s *Server) Stop(_ context.Context) error {
	s.grpcServer.GracefulStop()
	return nil
}

func (s *Server) ListByMonth(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	if r == nil {
		return nil, status.Error(codes.InvalidArgument, errRequestNotProvided)
	}
	fields := r.GetFields()
	events, err := s.app.ListByMonth(ctx, stringValue(fields["year"]), stringValue(fields["month"]))
	if err != nil {
		return nil, toStatus(err)
	}
	if events == nil {
		events = []storage.Event{}
	}
	return toStruct(map[string]interface{}{"events": events})
}

func (s *Server) GetEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	if r == nil {
		return nil, status.Error(codes.InvalidArgument, errRequestNotProvided)
	}
	e, err := s.app.GetEvent(ctx, idValue(r.GetFields()["id"]))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(e)
}

func (s *Server) CreateEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	in, err := toInput(r)
	if err != nil {
		return nil, err
	}
	e, err := s.app.CreateEvent(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(e)
}

func (s *Server) UpdateEvent(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	in, err := toInput(r)
	if err != nil {
		return nil, err
	}
	e, err := s.app.UpdateEvent(ctx, idValue(r.GetFields()["id"]), in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(e)
}

func (s *Server) DeleteEvent(ctx context.Context, r *structpb.Struct) (*empty.Empty, error) {
	if r == nil {
		return nil, status.Error(codes.InvalidArgument, errRequestNotProvided)
	}
	if err := s.app.RemoveEvent(ctx, idValue(r.GetFields()["id"])); err != nil {
		return nil, toStatus(err)
	}
	return &empty.Empty{}, nil
}

func toStatus(err error) error {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, app.ErrNotFound):
		return status.Error(codes.NotFound, errEventNotFound)
	default:
		log.Errorf("grpc request failed: %v", err)
		return status.Error(codes.Internal, errInternalServerError)
	}
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to encode reply: %v", err)
		return nil, status.Error(codes.Internal, errInternalServerError)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		log.Errorf("failed to encode reply: %v", err)
		return nil, status.Error(codes.Internal, errInternalServerError)
	}
	res, err := structpb.NewStruct(m)
	if err != nil {
		log.Errorf("failed to encode reply: %v", err)
		return nil, status.Error(codes.Internal, errInternalServerError)
	}
	return res, nil
}

func toInput(r *structpb.Struct) (app.EventInput, error) {
	if r == nil {
		return app.EventInput{}, status.Error(codes.InvalidArgument, errRequestNotProvided)
	}
	data, err := json.Marshal(r.AsMap())
	if err != nil {
		return app.EventInput{}, status.Error(codes.InvalidArgument, errIncorrectRequest)
	}
	var in app.EventInput
	if err := json.Unmarshal(data, &in); err != nil {
		return app.EventInput{}, status.Errorf(codes.InvalidArgument, "%s: %v", errIncorrectRequest, err)
	}
	return in, nil
}

func stringValue(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	default:
		return ""
	}
}

// idValue returns 0 for anything that cannot be an event id.
func idValue(v *structpb.Value) int64 {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue < 1 || k.NumberValue > math.MaxInt64 || k.NumberValue != math.Trunc(k.NumberValue) {
			return 0
		}
		return int64(k.NumberValue)
	case *structpb.Value_StringValue:
		return app.ParseID(k.StringValue)
	default:
		return 0
	}
}

func methodName(name string) string {
	return fmt.Sprintf("/%s/%s", ServiceName, name)
}
