package internalgrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/lomoval/ai-calendar/internal/app"
	"github.com/lomoval/ai-calendar/internal/assistant"
	"github.com/lomoval/ai-calendar/internal/storage"
	memorystorage "github.com/lomoval/ai-calendar/internal/storage/memory"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type completer struct {
	reply string
}

func (c *completer) Complete(_ context.Context, _, _ string) (string, error) {
	return c.reply, nil
}

func startServer(t *testing.T) (*grpc.ClientConn, *app.App, *completer) {
	t.Helper()
	calendar := app.New(memorystorage.New(), nil)
	c := &completer{}
	s := NewServer(Config{}, calendar, assistant.New(c, calendar), time.UTC)
	s.now = func() time.Time { return time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC) }

	lsn := bufconn.Listen(1024 * 1024)
	go func() {
		_ = s.Serve(lsn)
	}()
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lsn.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, calendar, c
}

func TestEventsService(t *testing.T) {
	conn, calendar, _ := startServer(t)
	ctx := context.Background()

	created, err := calendar.CreateEvent(ctx, storage.Event{Name: "Standup", Date: "2030-01-01", Time: "09:00", Duration: 15})
	require.NoError(t, err)

	list := &structpb.ListValue{}
	require.NoError(t, conn.Invoke(ctx, "/calendar.Events/ListEvents", &empty.Empty{}, list))
	require.Len(t, list.GetValues(), 1)
	require.Equal(t, "Standup", list.GetValues()[0].GetStructValue().GetFields()["name"].GetStringValue())

	event := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, "/calendar.Events/GetEvent", wrapperspb.Int64(created.ID), event))
	require.Equal(t, map[string]interface{}{
		"id":       float64(created.ID),
		"name":     "Standup",
		"date":     "2030-01-01",
		"time":     "09:00",
		"duration": float64(15),
	}, event.AsMap())

	require.NoError(t, conn.Invoke(ctx, "/calendar.Events/RemoveEvent", wrapperspb.Int64(created.ID), &empty.Empty{}))

	err = conn.Invoke(ctx, "/calendar.Events/GetEvent", wrapperspb.Int64(created.ID), event)
	require.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(ctx, "/calendar.Events/RemoveEvent", wrapperspb.Int64(created.ID), &empty.Empty{})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestAssistantService(t *testing.T) {
	conn, _, c := startServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		reply   string
		code    codes.Code
	}{
		{name: "empty message", message: " ", code: codes.InvalidArgument},
		{name: "not json", message: "hi", reply: "Hello", code: codes.Internal},
		{name: "missing params", message: "x", reply: `{"action":"createEvent","params":{"name":"x"}}`, code: codes.InvalidArgument},
		{name: "declined", message: "x", reply: `{"action":"error","params":{"message":"no"}}`, code: codes.InvalidArgument},
		{name: "unknown", message: "x", reply: `{"action":"dance","params":{}}`, code: codes.InvalidArgument},
		{name: "not found", message: "x", reply: `{"action":"getEventById","params":{"id":7}}`, code: codes.NotFound},
		{
			name:    "invalid date",
			message: "x",
			reply:   `{"action":"createEvent","params":{"name":"x","date":"2030-13-40","time":"10:00","duration":5}}`,
			code:    codes.InvalidArgument,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c.reply = tt.reply
			err := conn.Invoke(ctx, "/calendar.Assistant/Ask", wrapperspb.String(tt.message), &structpb.Struct{})
			require.Equal(t, tt.code, status.Code(err))
		})
	}

	t.Run("create event", func(t *testing.T) {
		c.reply = `{"action":"createEvent","params":{"name":"meeting","date":"2030-01-02","time":"10:00","duration":120}}`
		res := &structpb.Struct{}
		require.NoError(t, conn.Invoke(ctx, "/calendar.Assistant/Ask", wrapperspb.String("meeting tomorrow"), res))
		require.Equal(t, "createEvent", res.GetFields()["action"].GetStringValue())
		result := res.GetFields()["result"].GetStructValue().AsMap()
		require.Equal(t, "meeting", result["name"])
		require.Equal(t, float64(120), result["duration"])
	})
}
