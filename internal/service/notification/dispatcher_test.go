package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, channel, text string) error {
	args := m.Called(ctx, channel, text)
	return args.Error(0)
}

func TestDispatcher_Send(t *testing.T) {
	ctx := context.Background()
	price := new(MockSender)
	price.On("Send", ctx, ChannelPrice, "hello").Return(nil)

	d := NewDispatcher(map[string]Sender{ChannelPrice: price})
	assert.NoError(t, d.Send(ctx, ChannelPrice, "hello"))
	price.AssertExpectations(t)

	err := d.Send(ctx, "unknown", "hello")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestDispatcher_SendError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("webhook down")
	ma := new(MockSender)
	ma.On("Send", ctx, ChannelMA, "x").Return(boom)

	d := NewDispatcher(map[string]Sender{ChannelMA: ma})
	assert.ErrorIs(t, d.Send(ctx, ChannelMA, "x"), boom)
}

func TestDispatcher_Channels(t *testing.T) {
	d := NewDispatcher(map[string]Sender{
		ChannelPrice: NewLogSender(),
		ChannelMA:    NewLogSender(),
	})
	assert.Equal(t, []string{ChannelMA, ChannelPrice}, d.Channels())
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	price := new(MockSender)
	price.On("Send", ctx, ChannelPrice, "bye").Return(errors.New("rate limited"))
	ma := new(MockSender)
	ma.On("Send", ctx, ChannelMA, "bye").Return(nil)

	d := NewDispatcher(map[string]Sender{ChannelPrice: price, ChannelMA: ma})
	sent := Broadcast(ctx, d, "bye", ChannelPrice, ChannelMA)
	assert.Equal(t, 1, sent)
	price.AssertExpectations(t)
	ma.AssertExpectations(t)
}
