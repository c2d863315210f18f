package api

import (
	"delegatecomp/internal/domain"
	"delegatecomp/internal/service"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

type MonthSummaryRequest struct {
	Dao         string `json:"dao"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	OnlyOptedIn bool   `json:"onlyOptedIn"`
}

func (m ApiHandler) monthSummary(c *gin.Context) {
	var requestBody MonthSummaryRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	if requestBody.Month < 1 || requestBody.Month > 12 {
		returnErrorJsonCode(fmt.Errorf("month must be 1-12, got %d", requestBody.Month), c, 400)
		return
	}

	summary, err := m.SummaryService.GetMonthSummary(
		c.Request.Context(),
		requestBody.Dao,
		domain.MonthKey{Month: requestBody.Month, Year: requestBody.Year},
		service.GetDelegatesOptions{OnlyOptedIn: requestBody.OnlyOptedIn},
	)
	if err != nil {
		if errors.As(err, &domain.UnknownDAOError{}) {
			returnErrorJsonCode(err, c, 404)
			return
		}
		returnErrorJson(fmt.Errorf("failed to summarize month: %w", err), c)
		return
	}

	c.JSON(200, summary)
}
