package internalgrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/lomoval/ai-calendar/internal/app"
	"github.com/lomoval/ai-calendar/internal/assistant"
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/validator"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	errInternalServerError = "internal server error"
	errEventNotFound       = "event not found"
	errMessageRequired     = "message is required"
	errModelParse          = "error parsing model response"
	errUnknownAction       = "unknown action"
)

type Config struct {
	Host string
	Port int
}

type Assistant interface {
	Interpret(ctx context.Context, message string, now time.Time) (assistant.Result, error)
}

type Server struct {
	grpcServer *grpc.Server
	app        *app.App
	assistant  Assistant
	location   *time.Location
	now        func() time.Time
	addr       string
}

func NewServer(config Config, app *app.App, assistant Assistant, location *time.Location) *Server {
	if location == nil {
		location = time.Local
	}
	s := &Server{
		app:       app,
		assistant: assistant,
		location:  location,
		now:       time.Now,
		addr:      net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
	}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(loggingHandler))
	s.grpcServer.RegisterService(&eventsServiceDesc, s)
	s.grpcServer.RegisterService(&assistantServiceDesc, s)
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

// Serve accepts connections on lsn until Stop is called.
func (s *Server) Serve(lsn net.Listener) error {
	return s.grpcServer.Serve(lsn)
}

func (s *Server) Stop(_ context.Context) error {
	s.grpcServer.GracefulStop()
	return nil
}

func (s *Server) ListEvents(ctx context.Context, _ *empty.Empty) (*structpb.ListValue, error) {
	events, err := s.app.ListEvents(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	values := make([]*structpb.Value, 0, len(events))
	for _, e := range events {
		values = append(values, structpb.NewStructValue(toStruct(e)))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *Server) GetEvent(ctx context.Context, r *wrapperspb.Int64Value) (*structpb.Struct, error) {
	e, err := s.app.GetEvent(ctx, r.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(e), nil
}

func (s *Server) RemoveEvent(ctx context.Context, r *wrapperspb.Int64Value) (*empty.Empty, error) {
	if err := s.app.RemoveEvent(ctx, r.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &empty.Empty{}, nil
}

func (s *Server) Ask(ctx context.Context, r *wrapperspb.StringValue) (*structpb.Struct, error) {
	res, err := s.assistant.Interpret(ctx, r.GetValue(), s.now().In(s.location))
	if err != nil {
		return nil, toStatus(err)
	}

	b, err := json.Marshal(res)
	if err != nil {
		log.Errorf("failed to marshal assistant result: %v", err)
		return nil, status.Error(codes.Internal, errInternalServerError)
	}
	st := &structpb.Struct{}
	if err := st.UnmarshalJSON(b); err != nil {
		log.Errorf("failed to convert assistant result: %v", err)
		return nil, status.Error(codes.Internal, errInternalServerError)
	}
	return st, nil
}

func toStruct(e storage.Event) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewNumberValue(float64(e.ID)),
		"name":     structpb.NewStringValue(e.Name),
		"date":     structpb.NewStringValue(e.Date),
		"time":     structpb.NewStringValue(e.Time),
		"duration": structpb.NewNumberValue(float64(e.Duration)),
	}}
}

func toStatus(err error) error {
	var (
		validationErr validator.ValidationErrors
		parseErr      *assistant.ModelParseError
		missingErr    *assistant.MissingParamsError
		declinedErr   *assistant.ModelDeclinedError
		unknownErr    *assistant.UnknownActionError
	)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		return status.Error(codes.InvalidArgument, errMessageRequired)
	case errors.Is(err, storage.ErrNotFoundEvent):
		return status.Error(codes.NotFound, errEventNotFound)
	case errors.As(err, &validationErr), errors.As(err, &missingErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &declinedErr):
		return status.Error(codes.InvalidArgument, declinedErr.Message)
	case errors.As(err, &unknownErr):
		return status.Error(codes.InvalidArgument, errUnknownAction)
	case errors.As(err, &parseErr):
		log.WithField("reply", parseErr.Raw).Errorf("failed to parse model reply: %v", parseErr.Err)
		return status.Error(codes.Internal, fmt.Sprintf("%s: %s", errModelParse, parseErr.Raw))
	default:
		log.Errorf("grpc request failed: %v", err)
		return status.Error(codes.Internal, errInternalServerError)
	}
}
