package quote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pcruz7/lancer/internal/quote"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    quote.CreateParams
		setupMock func(m *quote.MockRepository)
		wantErr   bool
	}

	userID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			params: quote.CreateParams{
				ClientID: uuid.New(),
				Title:    "Website redesign",
				Currency: "USD",
				Items: []quote.ItemParams{
					{Description: "Design", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromFloat(0.1), Discount: decimal.NewFromInt(50)},
				},
			},
			setupMock: func(m *quote.MockRepository) {
				m.EXPECT().NextNumber(gomock.Any(), userID, 2026).Return(int64(7), nil)
				m.EXPECT().
					CreateQuote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, q *quote.Quote) error {
						q.ID = uuid.New()
						return nil
					})
				m.EXPECT().AddHistory(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:    "EmptyTitle",
			params:  quote.CreateParams{ClientID: uuid.New()},
			wantErr: true,
		},
		{
			name:    "UnknownCurrency",
			params:  quote.CreateParams{ClientID: uuid.New(), Title: "T", Currency: "XQZ"},
			wantErr: true,
		},
		{
			name: "RepoError",
			params: quote.CreateParams{
				ClientID: uuid.New(),
				Title:    "Website redesign",
			},
			setupMock: func(m *quote.MockRepository) {
				m.EXPECT().NextNumber(gomock.Any(), userID, 2026).Return(int64(0), errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := quote.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := quote.NewService(repo).WithClock(fixedClock)
			got, err := svc.Create(context.Background(), userID, tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "QUO-2026-0007", got.Number)
			assert.Equal(t, quote.StatusDraft, got.Status)
			assert.True(t, decimal.NewFromInt(275).Equal(got.TotalAmount))
		})
	}
}

func TestService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	id := uuid.New()

	repo := quote.NewMockRepository(ctrl)
	repo.EXPECT().
		GetQuote(gomock.Any(), userID, id).
		Return(&quote.Quote{ID: id, UserID: userID, Status: quote.StatusDraft, Currency: "USD"}, nil)
	repo.EXPECT().
		UpdateQuote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q *quote.Quote) error {
			assert.Equal(t, quote.StatusSent, q.Status)
			require.NotNil(t, q.SentAt)
			return nil
		})
	repo.EXPECT().AddHistory(gomock.Any(), gomock.Any()).Return(nil)

	svc := quote.NewService(repo).WithClock(fixedClock)

	got, err := svc.Send(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusSent, got.Status)
}

func TestService_Send_IllegalTransitionDoesNotPersist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	id := uuid.New()

	repo := quote.NewMockRepository(ctrl)
	repo.EXPECT().
		GetQuote(gomock.Any(), userID, id).
		Return(&quote.Quote{ID: id, UserID: userID, Status: quote.StatusAccepted, Currency: "USD"}, nil)

	svc := quote.NewService(repo).WithClock(fixedClock)

	_, err := svc.Send(context.Background(), userID, id)

	var terr *quote.TransitionError
	require.ErrorAs(t, err, &terr)
}

func TestService_Send_ConflictPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	id := uuid.New()

	repo := quote.NewMockRepository(ctrl)
	repo.EXPECT().
		GetQuote(gomock.Any(), userID, id).
		Return(&quote.Quote{ID: id, UserID: userID, Status: quote.StatusDraft, Currency: "USD"}, nil)
	repo.EXPECT().UpdateQuote(gomock.Any(), gomock.Any()).Return(quote.ErrConflict)

	svc := quote.NewService(repo).WithClock(fixedClock)

	_, err := svc.Send(context.Background(), userID, id)
	require.ErrorIs(t, err, quote.ErrConflict)
}

func TestService_Delete_OnlyDrafts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	id := uuid.New()

	repo := quote.NewMockRepository(ctrl)
	repo.EXPECT().
		GetQuote(gomock.Any(), userID, id).
		Return(&quote.Quote{ID: id, UserID: userID, Status: quote.StatusSent, Currency: "USD"}, nil)

	svc := quote.NewService(repo).WithClock(fixedClock)

	require.ErrorIs(t, svc.Delete(context.Background(), userID, id), quote.ErrLocked)
}

func TestService_HistoryFailureDoesNotFailTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	id := uuid.New()

	repo := quote.NewMockRepository(ctrl)
	repo.EXPECT().
		GetQuote(gomock.Any(), userID, id).
		Return(&quote.Quote{ID: id, UserID: userID, Status: quote.StatusDraft, Currency: "USD"}, nil)
	repo.EXPECT().UpdateQuote(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().AddHistory(gomock.Any(), gomock.Any()).Return(errors.New("history table gone"))

	svc := quote.NewService(repo).WithClock(fixedClock)

	_, err := svc.Send(context.Background(), userID, id)
	require.NoError(t, err)
}
