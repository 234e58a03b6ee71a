package services

import (
	"context"
	"errors"
	"testing"

	"whutmovie/internal/models"
	"whutmovie/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	sent []models.ContactMessage
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg models.ContactMessage) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func TestContactSubmitPublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewContactService(pub, testutil.NewLogger())

	err := svc.Submit(context.Background(), ContactInput{
		Name:    " Sam ",
		Email:   "sam@example.com",
		Message: "Please add Paddington 2 everywhere.",
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "Sam", pub.sent[0].Name)
	assert.NotEmpty(t, pub.sent[0].SubmittedAt)
}

func TestContactSubmitValidation(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewContactService(pub, testutil.NewLogger())

	tests := []struct {
		name  string
		input ContactInput
		field string
	}{
		{"no name", ContactInput{Email: "a@b.co", Message: "long enough message"}, "name"},
		{"bad email", ContactInput{Name: "Sam", Email: "not-an-email", Message: "long enough message"}, "email"},
		{"short message", ContactInput{Name: "Sam", Email: "a@b.co", Message: "hi"}, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Submit(context.Background(), tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Empty(t, pub.sent)
}

func TestContactSubmitWithoutPublisher(t *testing.T) {
	svc := NewContactService(nil, testutil.NewLogger())
	err := svc.Submit(context.Background(), ContactInput{Name: "Sam", Email: "a@b.co", Message: "long enough message"})
	assert.NoError(t, err)
}

func TestContactSubmitPublishFailure(t *testing.T) {
	svc := NewContactService(&fakePublisher{err: errors.New("broker down")}, testutil.NewLogger())
	err := svc.Submit(context.Background(), ContactInput{Name: "Sam", Email: "a@b.co", Message: "long enough message"})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}
