// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"advisory-workers/internal/common/database"
	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/internal/finance"
	"advisory-workers/internal/models"
)

const (
	queryProfile = `SELECT id, age, annual_income, current_savings, debt_amount, monthly_investment,
		risk_tolerance, investment_horizon, goals, has_emergency_fund, has_retirement_account
		FROM users WHERE id = $1`

	queryHoldings = `SELECT symbol, quantity, purchase_price, current_price, asset_type
		FROM holdings WHERE user_id = $1 ORDER BY id`

	queryGoal = `SELECT id, name, target_amount, current_amount, monthly_contribution,
		created_at, target_date, is_achieved
		FROM financial_goals WHERE user_id = $1 AND id = $2`

	queryRecentMessages = `SELECT role, content FROM chat_history
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	insertChatMessage = `INSERT INTO chat_history (user_id, role, content, response_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
)

// Store reads profiles, holdings, goals and chat history and writes chat
// exchanges. It never mutates profile, portfolio or goal rows.
type Store struct {
	pg *database.PostgresClient
}

func New(pg *database.PostgresClient) *Store {
	return &Store{pg: pg}
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var (
		p     models.UserProfile
		age   sql.NullInt64
		risk  sql.NullString
		goals []byte
	)
	err := s.pg.DB.QueryRowContext(ctx, queryProfile, userID).Scan(
		&p.UserID, &age, &p.AnnualIncome, &p.Savings, &p.Debt, &p.MonthlyInvestment,
		&risk, &p.InvestmentHorizon, &goals, &p.HasEmergencyFund, &p.HasRetirementAccount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("profile", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p.Age = int(age.Int64)
	p.RiskTolerance = models.ParseRiskTolerance(risk.String)
	if len(goals) > 0 {
		if err := json.Unmarshal(goals, &p.Goals); err != nil {
			return nil, fmt.Errorf("decode profile goals: %w", err)
		}
	}
	return &p, nil
}

// ListHoldings returns the user's holdings. A missing current price is read as
// the purchase price, i.e. no unrealised gain. A stored row that fails holding
// validation is reported as INVALID_INPUT rather than aggregated.
func (s *Store) ListHoldings(ctx context.Context, userID string) ([]models.Holding, error) {
	rows, err := s.pg.DB.QueryContext(ctx, queryHoldings, userID)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var (
			h       models.Holding
			current sql.NullFloat64
			asset   string
		)
		if err := rows.Scan(&h.Symbol, &h.Quantity, &h.PurchasePrice, &current, &asset); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		h.CurrentPrice = h.PurchasePrice
		if current.Valid {
			h.CurrentPrice = current.Float64
		}
		h.AssetType = models.AssetType(asset)
		if !h.AssetType.Valid() {
			h.AssetType = models.AssetOther
		}
		if err := finance.ValidateHolding(h); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var g models.Goal
	err := s.pg.DB.QueryRowContext(ctx, queryGoal, userID, goalID).Scan(
		&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.MonthlyContribution,
		&g.CreatedAt, &g.TargetDate, &g.IsAchieved,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("goal", goalID)
	}
	if err != nil {
		return nil, fmt.Errorf("query goal: %w", err)
	}
	return &g, nil
}

// RecentMessages returns up to limit messages, oldest first.
func (s *Store) RecentMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	rows, err := s.pg.DB.QueryContext(ctx, queryRecentMessages, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SaveChatExchange writes the user message and the advisory response in one
// transaction.
func (s *Store) SaveChatExchange(ctx context.Context, event models.PersistenceEvent) error {
	resp := event.Response
	err := s.pg.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertChatMessage,
			event.UserID, string(models.RoleUser), event.Message, nil, resp.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertChatMessage,
			event.UserID, string(models.RoleAssistant), resp.Text, resp.ResponseID, resp.CreatedAt)
		return err
	})
	if err != nil {
		return apperrors.NewPersistenceFailedError(err)
	}
	return nil
}
