// Code generated by MockGen. DO NOT EDIT.
// Source: service.go
//
// Generated by this command:
//
//	mockgen -source=service.go -destination=repository_mock.go -package=invoice
//

// Package invoice is a generated GoMock package.
package invoice

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

// CreateInvoice mocks base method.
func (m *MockRepository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateInvoice", ctx, inv)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateInvoice indicates an expected call of CreateInvoice.
func (mr *MockRepositoryMockRecorder) CreateInvoice(ctx, inv any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateInvoice", reflect.TypeOf((*MockRepository)(nil).CreateInvoice), ctx, inv)
}

// DeleteInvoice mocks base method.
func (m *MockRepository) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteInvoice", ctx, userID, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteInvoice indicates an expected call of DeleteInvoice.
func (mr *MockRepositoryMockRecorder) DeleteInvoice(ctx, userID, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteInvoice", reflect.TypeOf((*MockRepository)(nil).DeleteInvoice), ctx, userID, id)
}

// GetInvoice mocks base method.
func (m *MockRepository) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetInvoice", ctx, userID, id)
	ret0, _ := ret[0].(*Invoice)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetInvoice indicates an expected call of GetInvoice.
func (mr *MockRepositoryMockRecorder) GetInvoice(ctx, userID, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetInvoice", reflect.TypeOf((*MockRepository)(nil).GetInvoice), ctx, userID, id)
}

// ListInvoices mocks base method.
func (m *MockRepository) ListInvoices(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Invoice, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListInvoices", ctx, userID, filter)
	ret0, _ := ret[0].([]*Invoice)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListInvoices indicates an expected call of ListInvoices.
func (mr *MockRepositoryMockRecorder) ListInvoices(ctx, userID, filter any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListInvoices", reflect.TypeOf((*MockRepository)(nil).ListInvoices), ctx, userID, filter)
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

// UpdateInvoice mocks base method.
func (m *MockRepository) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateInvoice", ctx, inv)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateInvoice indicates an expected call of UpdateInvoice.
func (mr *MockRepositoryMockRecorder) UpdateInvoice(ctx, inv any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateInvoice", reflect.TypeOf((*MockRepository)(nil).UpdateInvoice), ctx, inv)
}
