package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// --- mock ---

type mockSubscriptionSvc struct{ mock.Mock }

func (m *mockSubscriptionSvc) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Subscriber, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*domain.Subscriber); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubscriptionSvc) Unsubscribe(ctx context.Context, address string) error {
	return m.Called(ctx, address).Error(0)
}

func (m *mockSubscriptionSvc) List(ctx context.Context) ([]domain.Subscriber, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]domain.Subscriber)
	return subs, args.Error(1)
}

// --- helpers ---

func newSubscriptionRouter(svc *mockSubscriptionSvc) http.Handler {
	h := NewSubscriptionHandler(svc)
	r := chi.NewRouter()
	r.Post("/subscriptions", h.Subscribe)
	r.Delete("/subscriptions/{address}", h.Unsubscribe)
	return r
}

// --- tests ---

func TestSubscribeHandler_Created(t *testing.T) {
	svc := new(mockSubscriptionSvc)
	svc.On("Subscribe", mock.Anything, domain.SubscribeRequest{Address: "someone@example.com", Channel: "email"}).
		Return(&domain.Subscriber{Address: "someone@example.com", Channel: "email", Subscribed: true}, nil)

	body := bytes.NewBufferString(`{"address": "someone@example.com", "channel": "email"}`)
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", body)
	rr := httptest.NewRecorder()
	newSubscriptionRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var sub domain.Subscriber
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sub))
	assert.True(t, sub.Subscribed)
}

func TestSubscribeHandler_MalformedBody(t *testing.T) {
	svc := new(mockSubscriptionSvc)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	newSubscriptionRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestSubscribeHandler_ValidationFailure(t *testing.T) {
	svc := new(mockSubscriptionSvc)
	svc.On("Subscribe", mock.Anything, mock.Anything).Return(nil, domain.ErrBadRequest)

	body := bytes.NewBufferString(`{"address": "nope", "channel": "sms"}`)
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", body)
	rr := httptest.NewRecorder()
	newSubscriptionRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUnsubscribeHandler_OK(t *testing.T) {
	svc := new(mockSubscriptionSvc)
	svc.On("Unsubscribe", mock.Anything, "someone@example.com").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/subscriptions/someone@example.com", nil)
	rr := httptest.NewRecorder()
	newSubscriptionRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "unsubscribed", env.Message)
}

func TestUnsubscribeHandler_UnknownAddress(t *testing.T) {
	svc := new(mockSubscriptionSvc)
	svc.On("Unsubscribe", mock.Anything, "ghost@example.com").Return(domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/subscriptions/ghost@example.com", nil)
	rr := httptest.NewRecorder()
	newSubscriptionRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
