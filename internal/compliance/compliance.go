// Package compliance wraps the external jurisdiction/eligibility check
// consulted before any bid is accepted or revealed. The auction core treats
// the gate as a pass/fail oracle with a reason string and fails closed on
// any transport problem.
package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

//go:generate mockgen -source=compliance.go -destination=mock_compliance.go -package=compliance

// Verdict is the gate's answer for one (buyer, vertical, geo) triple.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Gate is the compliance oracle the auction core consults before accepting
// a bid. Implementations must return within a bounded time; callers treat
// a denial or an error identically (rejection, never a retry).
type Gate interface {
	CanTransact(ctx context.Context, buyerID, vertical, geo string) Verdict
}

// DefaultTimeout bounds the compliance call end to end.
const DefaultTimeout = 3 * time.Second

// HTTPGate calls the compliance collaborator over HTTP. Any transport error,
// timeout, or non-200 response is a denial.
type HTTPGate struct {
	url    string
	client *http.Client
}

// NewHTTPGate creates a gate calling the given endpoint with the default timeout
func NewHTTPGate(url string) *HTTPGate {
	return &HTTPGate{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

type canTransactRequest struct {
	BuyerID  string `json:"buyer_id"`
	Vertical string `json:"vertical"`
	Geo      string `json:"geo"`
}

// CanTransact asks the collaborator whether the buyer may transact on this
// lead's vertical and geography. Fails closed.
func (g *HTTPGate) CanTransact(ctx context.Context, buyerID, vertical, geo string) Verdict {
	body, err := json.Marshal(canTransactRequest{BuyerID: buyerID, Vertical: vertical, Geo: geo})
	if err != nil {
		return Verdict{Allowed: false, Reason: fmt.Sprintf("compliance request encoding failed: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Verdict{Allowed: false, Reason: fmt.Sprintf("compliance request build failed: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Verdict{Allowed: false, Reason: fmt.Sprintf("compliance check unavailable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{Allowed: false, Reason: fmt.Sprintf("compliance check returned status %d", resp.StatusCode)}
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{Allowed: false, Reason: fmt.Sprintf("compliance response decoding failed: %v", err)}
	}
	return verdict
}

// AllowAll is a gate that admits every transaction. Intended for local runs
// when no compliance collaborator is configured.
type AllowAll struct{}

// CanTransact always allows
func (AllowAll) CanTransact(context.Context, string, string, string) Verdict {
	return Verdict{Allowed: true}
}
