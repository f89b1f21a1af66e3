package newsletter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/aarav-aiphi/Backend/pkg/db/dbtest"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu       sync.Mutex
	notified []mail.Message
	sent     []mail.Message
	failFor  map[string]error
}

func (m *recordingMailer) Notify(_ context.Context, msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, msg)
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[msg.To[0]]; err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) sentTo() []string {
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To...)
	}
	sort.Strings(out)
	return out
}

func newTestService(t *testing.T) (*Service, *recordingMailer) {
	t.Helper()
	m := &recordingMailer{failFor: map[string]error{}}
	svc, err := NewService(ServiceParams{Repo: NewRepository(dbtest.Open(t)), Mailer: m, Concurrency: 2})
	require.NoError(t, err)
	return svc, m
}

func TestSubscribeSendsWelcome(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Subscribe(ctx, SubscribeRequest{Email: " Reader@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "Successfully subscribed!", msg)
	require.Len(t, m.notified, 1)
	assert.Equal(t, []string{"reader@example.com"}, m.notified[0].To)
	assert.Equal(t, "Welcome to AiAzent Newsletter!", m.notified[0].Subject)

	_, err = svc.Subscribe(ctx, SubscribeRequest{Email: "reader@example.com"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, "This email is already subscribed.", pkgerrors.As(err).Message())

	subs, err := svc.Subscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "reader@example.com", subs[0].Email)
}

func TestSendAllMailsEachSubscriberSeparately(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Subscribe(ctx, SubscribeRequest{Email: email})
		require.NoError(t, err)
	}

	res, err := svc.SendAll(ctx, Broadcast{Subject: "Issue 1", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Newsletter sent successfully!", res.Message)
	assert.Equal(t, 3, res.Recipients)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, m.sentTo())
	for _, msg := range m.sent {
		assert.Len(t, msg.To, 1)
	}
}

func TestSendAllReportsFailures(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := svc.Subscribe(ctx, SubscribeRequest{Email: email})
		require.NoError(t, err)
	}
	m.failFor["b@example.com"] = errors.New("mailbox full")

	_, err := svc.SendAll(ctx, Broadcast{Subject: "Issue", Text: "t"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Equal(t, map[string]int{"failed": 1, "recipients": 2}, pkgerrors.As(err).Details())
	assert.Equal(t, []string{"a@example.com"}, m.sentTo())

	_, err = svc.SendAll(ctx, Broadcast{Subject: " "})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestSendTestFillsDefaults(t *testing.T) {
	svc, m := newTestService(t)

	res, err := svc.SendTest(context.Background(), Broadcast{To: "qa@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully!", res.Message)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Test Email", m.sent[0].Subject)
	assert.NotEmpty(t, m.sent[0].Text)
	assert.NotEmpty(t, m.sent[0].HTML)

	_, err = svc.SendTest(context.Background(), Broadcast{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
