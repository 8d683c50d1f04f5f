package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func TestSendExport(t *testing.T) {
	sender := new(mockSender)
	var sent bytes.Buffer
	sender.On("DialAndSend", mock.Anything).Run(func(args mock.Arguments) {
		msgs := args.Get(0).([]*gomail.Message)
		require.Len(t, msgs, 1)
		_, err := msgs[0].WriteTo(&sent)
		require.NoError(t, err)
	}).Return(nil)

	svc := NewService("ledger@clinic.test", sender)
	err := svc.SendExport(context.Background(), []string{" owner@clinic.test ", ""}, "Patients report", "Attached.", Attachment{
		Name:        "patients_financial_report_2024-03-01.csv",
		ContentType: "text/csv",
		Data:        []byte("a,b\n"),
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)

	out := sent.String()
	assert.Contains(t, out, "To: owner@clinic.test")
	assert.Contains(t, out, "Subject: Patients report")
	assert.Contains(t, out, "patients_financial_report_2024-03-01.csv")
}

func TestSendExportErrors(t *testing.T) {
	sender := new(mockSender)
	svc := NewService("ledger@clinic.test", sender)

	err := svc.SendExport(context.Background(), nil, "s", "b", Attachment{Name: "x.csv"})
	assert.ErrorIs(t, err, ErrNoRecipients)
	sender.AssertNotCalled(t, "DialAndSend", mock.Anything)

	boom := errors.New("connection refused")
	sender.On("DialAndSend", mock.Anything).Return(boom)
	err = svc.SendExport(context.Background(), []string{"owner@clinic.test"}, "s", "b", Attachment{Name: "x.csv"})
	assert.ErrorIs(t, err, boom)
}
