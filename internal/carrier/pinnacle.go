package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"claims-service/internal/models"
)

// PinnacleAdapter polls Pinnacle Property & Casualty's claim status endpoint.
// Pinnacle has no electronic intake: claims are filed by phone, so only
// FetchStatus is reachable through the registry gate. FileClaim exists to
// satisfy the contract and always reports the gap as a carrier error in case
// the gate is ever bypassed.
type PinnacleAdapter struct {
	baseURL     string
	accountID   string
	accessToken string
	client      *http.Client
}

func NewPinnacleAdapter(baseURL, accountID, accessToken string, timeout time.Duration) *PinnacleAdapter {
	return &PinnacleAdapter{
		baseURL:     baseURL,
		accountID:   accountID,
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

func (a *PinnacleAdapter) Name() string { return "pinnacle-property" }

func (a *PinnacleAdapter) FileClaim(ctx context.Context, req FilingRequest) (*FilingResult, error) {
	return nil, &models.UnsupportedOperationError{Carrier: a.Name(), Operation: "direct filing"}
}

// Pinnacle reports money in cents already and nests everything under "claim".
type pinnacleStatusReply struct {
	Claim struct {
		Phase         string  `json:"phase"`
		RcvCents      *int64  `json:"rcv_cents"`
		AcvCents      *int64  `json:"acv_cents"`
		PaymentsCents *int64  `json:"payments_cents"`
		Adjuster      *string `json:"adjuster"`
		AdjusterPhone *string `json:"adjuster_phone"`
	} `json:"claim"`
	Error *string `json:"error,omitempty"`
}

func (a *PinnacleAdapter) FetchStatus(ctx context.Context, carrierClaimID string) (*StatusSnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/accounts/%s/claims/%s",
		a.baseURL, url.PathEscape(a.accountID), url.PathEscape(carrierClaimID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating pinnacle request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, &models.CarrierError{Carrier: a.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.CarrierError{Carrier: a.Name(), Message: "error reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.CarrierError{
			Carrier: a.Name(),
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: string(body),
		}
	}

	var reply pinnacleStatusReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode pinnacle status reply: %w", err)
	}
	if reply.Error != nil {
		return nil, &models.CarrierError{Carrier: a.Name(), Code: "PINNACLE_ERROR", Message: *reply.Error}
	}

	return &StatusSnapshot{
		Status:        reply.Claim.Phase,
		ApprovedValue: reply.Claim.RcvCents,
		ACV:           reply.Claim.AcvCents,
		PaidToDate:    reply.Claim.PaymentsCents,
		AdjusterName:  reply.Claim.Adjuster,
		AdjusterPhone: reply.Claim.AdjusterPhone,
		RetrievedAt:   time.Now(),
	}, nil
}
