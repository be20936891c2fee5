package email

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	svc := &Service{
		redis:    client,
		from:     "noreply@dojobook.test",
		fromName: "DojoBook",
		smtpHost: "localhost",
		smtpPort: "1025",
	}
	return svc, mock
}

func TestSend_EnqueuesGenericJob(t *testing.T) {
	svc, mock := newTestService()

	mock.Regexp().ExpectLPush(queueKey, `.*"type":"generic".*`).SetVal(1)

	err := svc.Send(context.Background(), "mia@test.com", "Mia", "Welcome", "Hi there")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSend_RedisDown(t *testing.T) {
	svc, mock := newTestService()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(assert.AnError)

	err := svc.Send(context.Background(), "mia@test.com", "Mia", "Welcome", "Hi there")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSendBookingConfirmation(t *testing.T) {
	svc, mock := newTestService()

	t.Run("regular booking", func(t *testing.T) {
		mock.Regexp().ExpectLPush(queueKey, `.*"type":"booking_confirmation".*`).SetVal(1)

		err := svc.SendBookingConfirmation(context.Background(),
			"mia@test.com", "Mia", "Adults BJJ", time.Now().Add(24*time.Hour), false)
		require.NoError(t, err)
	})

	t.Run("trial booking mentions the trial", func(t *testing.T) {
		mock.Regexp().ExpectLPush(queueKey, `.*free trial classes.*`).SetVal(1)

		err := svc.SendBookingConfirmation(context.Background(),
			"mia@test.com", "Mia", "Adults BJJ", time.Now().Add(24*time.Hour), true)
		require.NoError(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMembershipEmails(t *testing.T) {
	svc, mock := newTestService()

	mock.Regexp().ExpectLPush(queueKey, `.*"type":"membership_approved".*`).SetVal(1)
	mock.Regexp().ExpectLPush(queueKey, `.*"type":"membership_rejected".*`).SetVal(1)

	err := svc.SendMembershipApproved(context.Background(), "mia@test.com", "Mia", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	err = svc.SendMembershipRejected(context.Background(), "mia@test.com", "Mia", "age requirement not met")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	svc, mock := newTestService()

	mock.ExpectLLen(queueKey).SetVal(3)

	assert.Equal(t, int64(3), svc.QueueLength(context.Background()))
}
