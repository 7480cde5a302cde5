// Code generated by MockGen. DO NOT EDIT.
// Source: service.go
//
// Generated by this command:
//
//	mockgen -source=service.go -destination=repository_mock.go -package=quote
//

// Package quote is a generated GoMock package.
package quote

import (
	context "context"
	reflect "reflect"

	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockRepository is a mock of Repository interface.
type MockRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRepositoryMockRecorder
}

// MockRepositoryMockRecorder is the mock recorder for MockRepository.
type MockRepositoryMockRecorder struct {
	mock *MockRepository
}

// NewMockRepository creates a new mock instance.
func NewMockRepository(ctrl *gomock.Controller) *MockRepository {
	mock := &MockRepository{ctrl: ctrl}
	mock.recorder = &MockRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRepository) EXPECT() *MockRepositoryMockRecorder {
	return m.recorder
}

// AddHistory mocks base method.
func (m *MockRepository) AddHistory(ctx context.Context, h *History) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddHistory", ctx, h)
	ret0, _ := ret[0].(error)
	return ret0
}

// AddHistory indicates an expected call of AddHistory.
func (mr *MockRepositoryMockRecorder) AddHistory(ctx, h any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddHistory", reflect.TypeOf((*MockRepository)(nil).AddHistory), ctx, h)
}

// CreateQuote mocks base method.
func (m *MockRepository) CreateQuote(ctx context.Context, q *Quote) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateQuote", ctx, q)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateQuote indicates an expected call of CreateQuote.
func (mr *MockRepositoryMockRecorder) CreateQuote(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateQuote", reflect.TypeOf((*MockRepository)(nil).CreateQuote), ctx, q)
}

// DeleteQuote mocks base method.
func (m *MockRepository) DeleteQuote(ctx context.Context, userID, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteQuote", ctx, userID, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteQuote indicates an expected call of DeleteQuote.
func (mr *MockRepositoryMockRecorder) DeleteQuote(ctx, userID, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteQuote", reflect.TypeOf((*MockRepository)(nil).DeleteQuote), ctx, userID, id)
}

// GetQuote mocks base method.
func (m *MockRepository) GetQuote(ctx context.Context, userID, id uuid.UUID) (*Quote, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetQuote", ctx, userID, id)
	ret0, _ := ret[0].(*Quote)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetQuote indicates an expected call of GetQuote.
func (mr *MockRepositoryMockRecorder) GetQuote(ctx, userID, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetQuote", reflect.TypeOf((*MockRepository)(nil).GetQuote), ctx, userID, id)
}

// ListHistory mocks base method.
func (m *MockRepository) ListHistory(ctx context.Context, userID, quoteID uuid.UUID) ([]*History, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListHistory", ctx, userID, quoteID)
	ret0, _ := ret[0].([]*History)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListHistory indicates an expected call of ListHistory.
func (mr *MockRepositoryMockRecorder) ListHistory(ctx, userID, quoteID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListHistory", reflect.TypeOf((*MockRepository)(nil).ListHistory), ctx, userID, quoteID)
}

// ListQuotes mocks base method.
func (m *MockRepository) ListQuotes(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Quote, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListQuotes", ctx, userID, filter)
	ret0, _ := ret[0].([]*Quote)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListQuotes indicates an expected call of ListQuotes.
func (mr *MockRepositoryMockRecorder) ListQuotes(ctx, userID, filter any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListQuotes", reflect.TypeOf((*MockRepository)(nil).ListQuotes), ctx, userID, filter)
}

// NextNumber mocks base method.
func (m *MockRepository) NextNumber(ctx context.Context, userID uuid.UUID, year int) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NextNumber", ctx, userID, year)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// NextNumber indicates an expected call of NextNumber.
func (mr *MockRepositoryMockRecorder) NextNumber(ctx, userID, year any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NextNumber", reflect.TypeOf((*MockRepository)(nil).NextNumber), ctx, userID, year)
}

// UpdateQuote mocks base method.
func (m *MockRepository) UpdateQuote(ctx context.Context, q *Quote) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateQuote", ctx, q)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateQuote indicates an expected call of UpdateQuote.
func (mr *MockRepositoryMockRecorder) UpdateQuote(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateQuote", reflect.TypeOf((*MockRepository)(nil).UpdateQuote), ctx, q)
}
