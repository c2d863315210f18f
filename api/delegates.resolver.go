package api

import (
	"delegatecomp/internal/calculator"
	"delegatecomp/internal/domain"
	"delegatecomp/internal/service"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

type DelegatesForMonthRequest struct {
	Dao         string  `json:"dao"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	OnlyOptedIn bool    `json:"onlyOptedIn"`
	Version     *string `json:"version,omitempty"`
	ScoreType   string  `json:"scoreType,omitempty"`
}

type DelegatesForMonthResponse struct {
	Dao            string                             `json:"dao"`
	Period         domain.MonthKey                    `json:"period"`
	Version        string                             `json:"version"`
	Status         domain.MonthStatus                 `json:"status"`
	SkippedRecords int                                `json:"skippedRecords"`
	Delegates      []domain.DelegateCompensationStats `json:"delegates"`
}

func (m ApiHandler) delegatesForMonth(c *gin.Context) {
	var requestBody DelegatesForMonthRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	if requestBody.Month < 1 || requestBody.Month > 12 {
		returnErrorJsonCode(fmt.Errorf("month must be 1-12, got %d", requestBody.Month), c, 400)
		return
	}
	if !domain.ScoreType(requestBody.ScoreType).Valid() {
		returnErrorJsonCode(fmt.Errorf("scoreType must be %q or %q, got %q", domain.ScoreTypeRounded, domain.ScoreTypeFloored, requestBody.ScoreType), c, 400)
		return
	}
	if requestBody.Version != nil {
		if _, err := calculator.GetVersionDefinition(*requestBody.Version); err != nil {
			returnErrorJsonCode(err, c, 400)
			return
		}
	}

	opts := service.GetDelegatesOptions{
		OnlyOptedIn: requestBody.OnlyOptedIn,
		Version:     requestBody.Version,
		ScoreType:   domain.ScoreType(requestBody.ScoreType),
	}

	result, err := m.DelegateService.GetDelegatesForMonth(
		c.Request.Context(),
		requestBody.Dao,
		domain.MonthKey{Month: requestBody.Month, Year: requestBody.Year},
		opts,
	)
	if err != nil {
		if errors.As(err, &domain.UnknownDAOError{}) {
			returnErrorJsonCode(err, c, 404)
			return
		}
		returnErrorJson(fmt.Errorf("failed to compute delegates for month: %w", err), c)
		return
	}

	c.JSON(200, DelegatesForMonthResponse{
		Dao:            result.DAOID,
		Period:         result.Month,
		Version:        result.Version,
		Status:         result.Status,
		SkippedRecords: result.SkippedRecords,
		Delegates:      result.Delegates,
	})
}

type AllDelegatesRequest struct {
	Dao  string  `json:"dao"`
	AsOf *string `json:"asOf,omitempty"`
}

type AllDelegatesResponse struct {
	Dao       string   `json:"dao"`
	Delegates []string `json:"delegates"`
}

func (m ApiHandler) allDelegates(c *gin.Context) {
	var requestBody AllDelegatesRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	asOf := time.Now().UTC()
	if requestBody.AsOf != nil {
		parsed, err := time.Parse(time.DateOnly, *requestBody.AsOf)
		if err != nil {
			returnErrorJsonCode(fmt.Errorf("could not parse asOf: %w", err), c, 400)
			return
		}
		asOf = parsed
	}

	delegates, err := m.DelegateService.GetAllDelegates(c.Request.Context(), requestBody.Dao, asOf)
	if err != nil {
		if errors.As(err, &domain.UnknownDAOError{}) {
			returnErrorJsonCode(err, c, 404)
			return
		}
		returnErrorJson(fmt.Errorf("failed to crawl delegates: %w", err), c)
		return
	}

	c.JSON(200, AllDelegatesResponse{
		Dao:       requestBody.Dao,
		Delegates: delegates,
	})
}
