package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"yt-analytics/domain/dto"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error {
	args := m.Called(ctx, message, options)
	return args.Error(0)
}

func (m *MockSender) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestServiceBus(sender messageSender, senderErr error) *SnapshotServiceBus {
	return &SnapshotServiceBus{
		queue: "snapshots",
		newSender: func(queue string) (messageSender, error) {
			if senderErr != nil {
				return nil, senderErr
			}
			return sender, nil
		},
	}
}

func TestSnapshotServiceBus_Notify(t *testing.T) {
	sender := new(MockSender)
	event := dto.SnapshotEvent{RunID: "run-1", Platform: "youtube", Date: "2026-10-17", RecordCount: 2}
	sender.On("SendMessage", mock.Anything, mock.MatchedBy(func(m *azservicebus.Message) bool {
		var decoded dto.SnapshotEvent
		return json.Unmarshal(m.Body, &decoded) == nil &&
			decoded.RecordCount == 2 &&
			*m.MessageID == "run-1" &&
			*m.ContentType == "application/json"
	}), (*azservicebus.SendMessageOptions)(nil)).Return(nil).Once()
	sender.On("Close", mock.Anything).Return(nil).Once()

	err := newTestServiceBus(sender, nil).Notify(context.Background(), event)

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestSnapshotServiceBus_NotifyErrors(t *testing.T) {
	sender := new(MockSender)
	sender.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("amqp: link detached")).Once()
	sender.On("Close", mock.Anything).Return(nil).Once()

	err := newTestServiceBus(sender, nil).Notify(context.Background(), dto.SnapshotEvent{RunID: "r"})
	assert.EqualError(t, err, "amqp: link detached")
	sender.AssertExpectations(t)

	err = newTestServiceBus(nil, errors.New("unauthorized")).Notify(context.Background(), dto.SnapshotEvent{RunID: "r"})
	assert.EqualError(t, err, "unauthorized")
}

func TestNewServiceBus_EmptyNamespace(t *testing.T) {
	_, err := NewServiceBus(context.Background(), "")
	assert.Error(t, err)
}
