package service

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickets/auth"
	"tickets/db"
	"tickets/entity"
	"tickets/pubsub"
	"tickets/pubsub/bus"
	"tickets/session"
)

var jwtKey = []byte("component-test-key")

func TestComponent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := sqlx.Open("postgres", postgresURL)
	require.NoError(t, err)
	defer dbConn.Close()

	redisClient := pubsub.NewRedisClient(redisAddr)
	defer redisClient.Close()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	svc, err := New(
		Config{HTTPAddr: addr, JWTKey: jwtKey, TrustProxy: true},
		dbConn,
		redisClient,
		nil,
	)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		assert.NoError(t, svc.Run(ctx))
	}()
	defer func() {
		cancel()
		<-finished
	}()

	baseURL := "http://" + addr
	waitForHttpServer(t, baseURL)

	t.Run("create ticket without session", func(t *testing.T) {
		status, body := postTicket(t, baseURL, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"errors":[{"message":"Not authorized"}]}`, body)
	})

	t.Run("create ticket with session", func(t *testing.T) {
		token, err := auth.NewToken(entity.UserPayload{ID: "u1", Email: "test@test.io"}, jwtKey)
		require.NoError(t, err)
		value, err := session.Encode(session.Session{JWT: token})
		require.NoError(t, err)

		status, body := postTicket(t, baseURL, &http.Cookie{Name: session.CookieName, Value: value})
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{}`, body)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/users/currentuser")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"errors":[{"message":"Not Found"}]}`, string(body))
	})

	t.Run("stored ticket is forwarded to redis", func(t *testing.T) {
		assertTicketCreatedForwarded(t, dbConn)
	})
}

func postTicket(t *testing.T, baseURL string, cookie *http.Cookie) (int, string) {
	t.Helper()

	req, err := http.NewRequest(
		http.MethodPost,
		baseURL+"/api/tickets",
		strings.NewReader(`{"title":"concert","price":20}`),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func assertTicketCreatedForwarded(t *testing.T, dbConn *sqlx.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient := pubsub.NewRedisClient(redisAddr)
	defer redisClient.Close()

	sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        redisClient,
		ConsumerGroup: "component-test",
	}, watermill.NopLogger{})
	require.NoError(t, err)
	defer sub.Close()

	messages, err := sub.Subscribe(ctx, bus.EventTopic("TicketCreated"))
	require.NoError(t, err)

	ticket, err := entity.NewTicket(entity.TicketAttrs{Title: "concert", Price: 20, UserID: "u1"})
	require.NoError(t, err)

	repo := db.NewTicketsPostgresRepository(dbConn, watermill.NopLogger{})
	require.NoError(t, repo.Add(ctx, ticket))

	for {
		select {
		case <-ctx.Done():
			t.Fatal("TicketCreated was not forwarded to redis")
		case msg := <-messages:
			msg.Ack()

			var event entity.TicketCreated
			require.NoError(t, json.Unmarshal(msg.Payload, &event))
			if event.TicketID == ticket.ID {
				return
			}
		}
	}
}

func waitForHttpServer(t *testing.T, baseURL string) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			if assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode) {
				return
			}
		},
		time.Second*10,
		time.Millisecond*50,
	)
}
