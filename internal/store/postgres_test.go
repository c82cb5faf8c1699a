package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(database.NewPostgresFromDB(db)), mock
}

func TestStore_GetProfile(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{
		"id", "age", "annual_income", "current_savings", "debt_amount", "monthly_investment",
		"risk_tolerance", "investment_horizon", "goals", "has_emergency_fund", "has_retirement_account",
	}).AddRow("42", 35, 1500000.0, 400000.0, 0.0, 25000.0, "AGGRESSIVE", 15, []byte(`["retirement","education"]`), true, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("42").WillReturnRows(rows)

	p, err := s.GetProfile(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", p.UserID)
	assert.Equal(t, 35, p.Age)
	assert.Equal(t, models.RiskAggressive, p.RiskTolerance)
	assert.Equal(t, []string{"retirement", "education"}, p.Goals)
	assert.True(t, p.HasEmergencyFund)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetProfileNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetProfile(context.Background(), "7")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_ListHoldings(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"symbol", "quantity", "purchase_price", "current_price", "asset_type"}).
		AddRow("RELIANCE", 50.0, 2400.0, 2650.0, "stock").
		AddRow("NIFTYBEES", 10.0, 200.0, nil, "fund").
		AddRow("GOLD", 1.0, 5000.0, 5100.0, "commodity")
	mock.ExpectQuery(regexp.QuoteMeta("FROM holdings WHERE user_id = $1")).WithArgs("42").WillReturnRows(rows)

	holdings, err := s.ListHoldings(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, 2650.0, holdings[0].CurrentPrice)
	assert.Equal(t, 200.0, holdings[1].CurrentPrice)
	assert.Equal(t, models.AssetFund, holdings[1].AssetType)
	assert.Equal(t, models.AssetOther, holdings[2].AssetType)
}

func TestStore_ListHoldingsRejectsMalformedRow(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"symbol", "quantity", "purchase_price", "current_price", "asset_type"}).
		AddRow("RELIANCE", 50.0, 2400.0, 2650.0, "stock").
		AddRow("TCS", 0.0, 3500.0, 3550.0, "stock")
	mock.ExpectQuery(regexp.QuoteMeta("FROM holdings WHERE user_id = $1")).WithArgs("42").WillReturnRows(rows)

	holdings, err := s.ListHoldings(context.Background(), "42")
	assert.Nil(t, holdings)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestStore_ListHoldingsEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM holdings")).WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"symbol", "quantity", "purchase_price", "current_price", "asset_type"}))

	holdings, err := s.ListHoldings(context.Background(), "42")
	require.NoError(t, err)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestStore_GetGoal(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	target := time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "target_amount", "current_amount", "monthly_contribution", "created_at", "target_date", "is_achieved"}).
		AddRow("9", "House", 1000000.0, 150000.0, 25000.0, created, target, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM financial_goals WHERE user_id = $1 AND id = $2")).WithArgs("42", "9").WillReturnRows(rows)

	g, err := s.GetGoal(context.Background(), "42", "9")
	require.NoError(t, err)
	assert.Equal(t, "House", g.Name)
	assert.Equal(t, created, g.CreatedAt)
	assert.Equal(t, target, g.TargetDate)

	mock.ExpectQuery(regexp.QuoteMeta("FROM financial_goals")).WithArgs("42", "10").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.GetGoal(context.Background(), "42", "10")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_RecentMessagesOldestFirst(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"role", "content"}).
		AddRow("assistant", "second").
		AddRow("user", "first")
	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_history")).WithArgs("42", 6).WillReturnRows(rows)

	msgs, err := s.RecentMessages(context.Background(), "42", 6)
	require.NoError(t, err)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
	}, msgs)
}

func testEvent() models.PersistenceEvent {
	return models.PersistenceEvent{
		UserID:  "42",
		Message: "recommend some stocks",
		Response: models.AdvisoryResponse{
			ResponseID: "resp-1",
			Text:       "text",
			Source:     models.SourceFallback,
			CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestStore_SaveChatExchange(t *testing.T) {
	s, mock := newMockStore(t)
	ev := testEvent()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_history")).
		WithArgs("42", "user", "recommend some stocks", nil, ev.Response.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_history")).
		WithArgs("42", "assistant", "text", "resp-1", ev.Response.CreatedAt).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveChatExchange(context.Background(), ev))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveChatExchangeRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_history")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SaveChatExchange(context.Background(), testEvent())
	assert.True(t, errors.Is(err, apperrors.ErrPersistenceFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}
