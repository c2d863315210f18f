package karma

import (
	"context"
	"delegatecomp/internal/logger"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	HttpClient *http.Client
	BaseUrl    string
	ApiKey     string
}

// RateCount mirrors the API's rn/tn pairs. Older payloads encode the values
// as strings, so both fields stay raw until the normalizer parses them.
type RateCount struct {
	Rn *string `json:"rn"`
	Tn *string `json:"tn"`
}

type FeedbackFromAPI struct {
	Relevance               *string `json:"relevance"`
	DepthOfAnalysis         *string `json:"depthOfAnalysis"`
	Timing                  *string `json:"timing"`
	ClarityAndCommunication *string `json:"clarityAndCommunication"`
	ImpactOnDecisionMaking  *string `json:"impactOnDecisionMaking"`
	PresenceMultiplier      *string `json:"presenceMultiplier"`
}

// DelegateStatsFromAPI is the raw per-delegate record. Every stats field is
// optional: the shape varies by formula version and the backend omits
// metrics that did not exist yet.
type DelegateStatsFromAPI struct {
	PublicAddress string  `json:"publicAddress"`
	Name          *string `json:"name"`
	EnsName       *string `json:"ensName"`
	OptedIn       *bool   `json:"optedIn"`
	Stats         struct {
		ParticipationRate  *RateCount       `json:"participationRate"`
		SnapshotVoting     *RateCount       `json:"snapshotVoting"`
		OnChainVoting      *RateCount       `json:"onChainVoting"`
		VotingPowerAverage *string          `json:"votingPowerAverage"`
		DelegateFeedback   *FeedbackFromAPI `json:"delegateFeedback"`
		BonusPoint         *string          `json:"bonusPoint"`
	} `json:"stats"`
}

type delegateStatsResponse struct {
	Data struct {
		Delegates []DelegateStatsFromAPI `json:"delegates"`
	} `json:"data"`
}

// GetDelegateStats fetches one DAO-month of raw delegate records.
func (c Client) GetDelegateStats(ctx context.Context, daoID string, month, year int) ([]DelegateStatsFromAPI, error) {
	url := fmt.Sprintf("%s/api/dao/%s/delegate-compensation?month=%d&year=%d", c.BaseUrl, daoID, month, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.ApiKey)
	}

	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode == 429 {
		logger.Debug("hit rate limit fetching %s %d-%d. sleeping...", daoID, year, month)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(30 * time.Second):
		}
		return c.GetDelegateStats(ctx, daoID, month, year)
	} else if response.StatusCode != 200 {
		type errResponse struct {
			Error string `json:"error"`
		}
		errJson := errResponse{}
		err = json.Unmarshal(responseBytes, &errJson)
		if err != nil {
			return nil, fmt.Errorf("received status code %d and failed to read error: %w", response.StatusCode, err)
		}
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, errJson.Error)
	}

	responseJson := delegateStatsResponse{}
	err = json.Unmarshal(responseBytes, &responseJson)
	if err != nil {
		return nil, err
	}

	return responseJson.Data.Delegates, nil
}
