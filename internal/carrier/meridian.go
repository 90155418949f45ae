package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"claims-service/internal/models"
)

// MeridianAdapter talks to Meridian Mutual's claims intake API. Meridian
// supports both direct filing and status polling over JSON.
type MeridianAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMeridianAdapter(baseURL, apiKey string, timeout time.Duration) *MeridianAdapter {
	return &MeridianAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *MeridianAdapter) Name() string { return "meridian-mutual" }

// Meridian wire shapes. Kept private: nothing outside the adapter sees them.
type meridianFilingPayload struct {
	PolicyNumber    string               `json:"policyNumber"`
	PerilCode       string               `json:"perilCode"`
	LossDate        string               `json:"lossDate"`
	LossDescription string               `json:"lossDescription"`
	InsuredName     string               `json:"insuredName"`
	RiskAddress     string               `json:"riskAddress"`
	Damages         []meridianDamageItem `json:"damages"`
	MitigationDone  bool                 `json:"mitigationDone"`
	MitigationCost  *float64             `json:"mitigationCost,omitempty"`
	Attachments     []string             `json:"attachments,omitempty"`
}

type meridianDamageItem struct {
	Component string `json:"component"`
	Severity  string `json:"severity"`
	Notes     string `json:"notes,omitempty"`
}

type meridianFilingReply struct {
	ClaimID         string `json:"claimId"`
	ClaimNumber     string `json:"claimNumber"`
	Status          string `json:"status"`
	ResponseDueDays int    `json:"responseDueDays"`
	Adjuster        *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"adjuster,omitempty"`
	Message string `json:"message"`
}

type meridianStatusReply struct {
	Status       string   `json:"status"`
	ApprovedRCV  *float64 `json:"approvedRcv"`
	ApprovedACV  *float64 `json:"approvedAcv"`
	PaidToDate   *float64 `json:"paidToDate"`
	AdjusterName *string  `json:"adjusterName"`
	AdjusterTel  *string  `json:"adjusterPhone"`
	AdjusterMail *string  `json:"adjusterEmail"`
}

type meridianError struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorMessage"`
}

// meridianPerilCodes translates the engine's cause-of-loss enum to Meridian's
// two-letter peril codes.
var meridianPerilCodes = map[models.CauseOfLoss]string{
	models.CauseHail:       "HL",
	models.CauseWind:       "WD",
	models.CauseTornado:    "TO",
	models.CauseHurricane:  "HU",
	models.CauseFire:       "FR",
	models.CauseWater:      "WA",
	models.CauseLightning:  "LI",
	models.CauseFallenTree: "FT",
	models.CauseOther:      "OT",
}

func (a *MeridianAdapter) FileClaim(ctx context.Context, req FilingRequest) (*FilingResult, error) {
	payload := meridianFilingPayload{
		PolicyNumber:    req.PolicyNumber,
		PerilCode:       meridianPerilCodes[req.CauseOfLoss],
		LossDate:        req.DateOfLoss.Format("2006-01-02"),
		LossDescription: req.LossDescription,
		InsuredName:     req.InsuredName,
		RiskAddress:     req.PropertyAddress,
		MitigationDone:  req.EmergencyRepair,
		Attachments:     req.PhotoURLs,
	}
	if req.EmergencyRepairCost != nil {
		cost := centsToDollars(*req.EmergencyRepairCost)
		payload.MitigationCost = &cost
	}
	for _, area := range req.DamageAreas {
		item := meridianDamageItem{Component: area.DamageType, Severity: string(area.Severity)}
		if area.Description != nil {
			item.Notes = *area.Description
		}
		payload.Damages = append(payload.Damages, item)
	}

	body, err := a.post(ctx, "/v2/claims", payload)
	if err != nil {
		return nil, err
	}

	var reply meridianFilingReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode meridian filing reply: %w", err)
	}

	result := &FilingResult{
		CarrierClaimID:        reply.ClaimID,
		ClaimNumber:           reply.ClaimNumber,
		Status:                reply.Status,
		EstimatedResponseDays: reply.ResponseDueDays,
		Message:               reply.Message,
	}
	if reply.Adjuster != nil {
		result.AdjusterName = &reply.Adjuster.Name
		result.AdjusterPhone = &reply.Adjuster.Phone
		result.AdjusterEmail = &reply.Adjuster.Email
	}
	return result, nil
}

func (a *MeridianAdapter) FetchStatus(ctx context.Context, carrierClaimID string) (*StatusSnapshot, error) {
	body, err := a.get(ctx, "/v2/claims/"+carrierClaimID+"/status")
	if err != nil {
		return nil, err
	}

	var reply meridianStatusReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode meridian status reply: %w", err)
	}

	return &StatusSnapshot{
		Status:        reply.Status,
		ApprovedValue: dollarsToCents(reply.ApprovedRCV),
		ACV:           dollarsToCents(reply.ApprovedACV),
		PaidToDate:    dollarsToCents(reply.PaidToDate),
		AdjusterName:  reply.AdjusterName,
		AdjusterPhone: reply.AdjusterTel,
		AdjusterEmail: reply.AdjusterMail,
		RetrievedAt:   time.Now(),
	}, nil
}

func (a *MeridianAdapter) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meridian payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("error creating meridian request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", a.apiKey)
	return a.do(httpReq)
}

func (a *MeridianAdapter) get(ctx context.Context, path string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating meridian request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", a.apiKey)
	return a.do(httpReq)
}

func (a *MeridianAdapter) do(req *http.Request) ([]byte, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &models.CarrierError{Carrier: a.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.CarrierError{Carrier: a.Name(), Message: "error reading response", Err: err}
	}

	if resp.StatusCode >= 400 {
		var carrierErr meridianError
		if err := json.Unmarshal(body, &carrierErr); err == nil && carrierErr.Code != "" {
			slog.Error("Meridian rejected request", "code", carrierErr.Code, "message", carrierErr.Message)
			return nil, &models.CarrierError{Carrier: a.Name(), Code: carrierErr.Code, Message: carrierErr.Message}
		}
		return nil, &models.CarrierError{
			Carrier: a.Name(),
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: string(body),
		}
	}
	return body, nil
}

func centsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

func dollarsToCents(dollars *float64) *int64 {
	if dollars == nil {
		return nil
	}
	cents := int64(*dollars*100 + 0.5)
	return &cents
}
