// internal/workers/advisory/assemble-response/assembler.go
package assembleresponse

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"advisory-workers/internal/models"
	guardrailcheck "advisory-workers/internal/workers/advisory/guardrail-check"
)

type Request struct {
	UserID         string
	Message        string
	Text           string
	Source         models.ResponseSource
	Documents      []models.RetrievedDocument
	MarketDataUsed bool
	Sentiment      models.MarketSentiment
}

type Result struct {
	Response  models.AdvisoryResponse
	Event     models.PersistenceEvent
	Screening guardrailcheck.Screening
}

// Assembler builds the final AdvisoryResponse. The disclaimer is always the
// last thing in the text and appears exactly once.
type Assembler struct {
	newID func() string
	now   func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (a *Assembler) Assemble(req Request) Result {
	body := StripDisclaimer(req.Text)
	screening := guardrailcheck.ScreenOutput(body)

	source := req.Source
	if source == "" {
		source = models.SourceFallback
	}

	resp := models.AdvisoryResponse{
		ResponseID:         a.newID(),
		Text:               WithDisclaimer(screening.Text),
		DisclaimerAppended: true,
		Source:             source,
		Documents:          DocumentRefs(req.Documents),
		MarketDataUsed:     req.MarketDataUsed,
		Sentiment:          models.ParseSentiment(string(req.Sentiment)),
		CreatedAt:          a.now(),
	}
	return Result{
		Response:  resp,
		Event:     models.PersistenceEvent{UserID: req.UserID, Message: req.Message, Response: resp},
		Screening: screening,
	}
}

// StripDisclaimer removes a trailing disclaimer so it can be re-appended after
// output screening.
func StripDisclaimer(text string) string {
	return strings.TrimSuffix(text, models.Disclaimer)
}

func WithDisclaimer(text string) string {
	return strings.TrimRight(text, " \n") + "\n" + models.Disclaimer
}

func DocumentRefs(docs []models.RetrievedDocument) []models.DocumentRef {
	refs := make([]models.DocumentRef, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, models.DocumentRef{ID: d.ID, Title: d.Metadata["title"], Score: d.Score})
	}
	return refs
}
