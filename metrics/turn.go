package metrics

import (
	"encoding/json"
	"time"

	"github.com/lovepop1/emotiaisupport/common/logger"
)

// TurnRecord is the per-turn summary logged as JSON. It complements the
// Prometheus collectors for deployments that only scrape logs.
type TurnRecord struct {
	Operation      string `json:"operation"`
	ConversationID string `json:"conversation_id"`
	SessionType    string `json:"session_type,omitempty"`
	Guides         int    `json:"guides"`
	HistoryTurns   int    `json:"history_turns"`
	PromptTokens   int    `json:"prompt_tokens,omitempty"`
	CacheHit       bool   `json:"cache_hit"`
	FellBack       bool   `json:"fell_back"`
	LatencyMS      int64  `json:"latency_ms"`
}

// Emit logs the record and feeds the matching collectors.
func (r TurnRecord) Emit(start time.Time) {
	r.LatencyMS = time.Since(start).Milliseconds()

	ObserveTurn(r.Operation, start)
	if r.Operation == "chat" {
		ObserveRetrieval(r.Guides)
		IncCache(r.CacheHit)
	}
	if r.FellBack {
		IncFallback(r.Operation)
	}
	if r.PromptTokens > 0 {
		ObservePromptTokens(r.PromptTokens)
	}

	if b, err := json.Marshal(r); err == nil {
		logger.Infof("turn %s", string(b))
	}
}
