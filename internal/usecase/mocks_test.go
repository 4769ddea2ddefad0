package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

type MockEmailValidator struct {
	mock.Mock
}

func (m *MockEmailValidator) CheckEmail(ctx context.Context, email string) (*entity.EmailCheck, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EmailCheck), args.Error(1)
}

type MockPhoneValidator struct {
	mock.Mock
}

func (m *MockPhoneValidator) CheckPhone(ctx context.Context, phone string) (*entity.PhoneCheck, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PhoneCheck), args.Error(1)
}

type MockContactSender struct {
	mock.Mock
}

func (m *MockContactSender) Submit(ctx context.Context, lead entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordValidation(field string, outcome entity.ValidationOutcome) {
	m.Called(field, outcome)
}

func (m *MockRecorder) RecordDispatch(result entity.SubmissionResult) {
	m.Called(result)
}

func (m *MockRecorder) RecordSubmission(delivered bool) {
	m.Called(delivered)
}

func ptr[T any](v T) *T { return &v }
