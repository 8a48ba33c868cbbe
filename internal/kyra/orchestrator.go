package kyra

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/antoniostano/kyra/internal/completion"
	"github.com/antoniostano/kyra/internal/memory"
	"github.com/antoniostano/kyra/internal/observability"
	"github.com/antoniostano/kyra/internal/prompt"
)

// DefaultUserID stands in when a chat request names no user.
const DefaultUserID = "anonymous"

const (
	defaultMemoryWindow   = 8
	completionTemperature = 0.4
)

// ValidationError carries a user-correctable message that may be shown
// verbatim to the caller. Every other failure class is collapsed to a
// generic message at the HTTP boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMessageRequired = &ValidationError{Message: "Message required"}
	ErrURLRequired     = &ValidationError{Message: "URL required"}
)

// Extractor fetches a URL and reduces it to a plain-text excerpt.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// Orchestrator wires memory, prompt assembly and completion into the
// chat and scan request pipelines. Each call runs one self-contained
// pipeline; the only shared state is the store behind the interface.
type Orchestrator struct {
	store     memory.Store
	completer completion.Completer
	extractor Extractor
	metrics   *observability.Metrics
	window    int
}

func NewOrchestrator(store memory.Store, completer completion.Completer, extractor Extractor, metrics *observability.Metrics, window int) *Orchestrator {
	if window <= 0 {
		window = defaultMemoryWindow
	}
	return &Orchestrator{
		store:     store,
		completer: completer,
		extractor: extractor,
		metrics:   metrics,
		window:    window,
	}
}

// Chat runs one conversational exchange: recent memory is replayed into
// the prompt, the reply is produced, and the exchange is persisted
// best-effort afterwards.
func (o *Orchestrator) Chat(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrMessageRequired
	}
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	started := time.Now()

	gatherStart := time.Now()
	window, err := o.store.Window(ctx, userID, o.window)
	if err != nil {
		o.metrics.CountStoreError("window")
		return "", fmt.Errorf("load memory window for %s: %w", userID, err)
	}
	o.metrics.ObserveStage(observability.StageGatherMemory, time.Since(gatherStart))

	msgs := prompt.Build(prompt.Persona(userID), window, message)

	completeStart := time.Now()
	reply, err := o.completer.Complete(ctx, msgs, completionTemperature)
	if err != nil {
		return "", fmt.Errorf("complete chat: %w", err)
	}
	o.metrics.ObserveCompletionLatency(time.Since(completeStart))
	o.metrics.ObserveStage(observability.StageComplete, time.Since(completeStart))

	persistStart := time.Now()
	if err := o.store.AppendExchange(ctx, userID, message, reply); err != nil {
		// The reply already exists; losing one exchange of memory is
		// not worth failing the request over.
		log.Printf("persist exchange for %s failed: %v", userID, err)
		o.metrics.CountStoreError("append")
	}
	o.metrics.ObserveStage(observability.StagePersist, time.Since(persistStart))
	o.metrics.ObserveStage(observability.StageRequestTotal, time.Since(started))

	return reply, nil
}

// Scan fetches a page and asks the model for a one-shot analysis of its
// visible text. No memory is read or written.
func (o *Orchestrator) Scan(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", ErrURLRequired
	}
	started := time.Now()

	fetchStart := time.Now()
	excerpt, err := o.extractor.Extract(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract page text: %w", err)
	}
	o.metrics.ObservePageFetchLatency(time.Since(fetchStart))
	o.metrics.ObserveStage(observability.StageFetchPage, time.Since(fetchStart))

	msgs := prompt.Build(prompt.AnalysisBrief(), nil, prompt.WrapExcerpt(excerpt))

	completeStart := time.Now()
	analysis, err := o.completer.Complete(ctx, msgs, completionTemperature)
	if err != nil {
		return "", fmt.Errorf("complete scan: %w", err)
	}
	o.metrics.ObserveCompletionLatency(time.Since(completeStart))
	o.metrics.ObserveStage(observability.StageComplete, time.Since(completeStart))
	o.metrics.ObserveStage(observability.StageRequestTotal, time.Since(started))

	return analysis, nil
}
