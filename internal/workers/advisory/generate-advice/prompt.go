package generateadvice

import (
	"strings"

	"advisory-workers/internal/models"
)

// SystemPrompt frames every generation call.
const SystemPrompt = `You are a financial advisory assistant. Give personalised guidance grounded in the
user's profile, goals and the market data provided.

Guidelines:
1. Weigh the user's risk tolerance, age, income and goals in every answer.
2. Support recommendations with the supplied knowledge and market data.
3. Be specific and actionable, and explain the reasoning.
4. Mention the risks involved.
5. Never promise returns or predict market performance.
6. Ask a clarifying question when information is missing.

You are an educational tool, not a licensed advisor. Suggest consulting a qualified
professional for major financial decisions.`

// BuildPrompt wraps the query in the assembled context. With no context the
// query is sent as is.
func BuildPrompt(query, context string) string {
	if strings.TrimSpace(context) == "" {
		return query
	}
	return "Context Information:\n" + context +
		"\n\n---\n\nUser Question: " + query +
		"\n\nPlease provide a helpful, personalized response based on the context above."
}

// trimHistory keeps the most recent limit messages.
func trimHistory(history []models.ChatMessage, limit int) []models.ChatMessage {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
