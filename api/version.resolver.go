package api

import (
	"delegatecomp/internal/domain"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

type ResolveVersionRequest struct {
	Dao  string `json:"dao"`
	Date string `json:"date"`
}

type ResolveVersionResponse struct {
	Dao     string `json:"dao"`
	Date    string `json:"date"`
	Version string `json:"version"`
}

func (m ApiHandler) resolveVersion(c *gin.Context) {
	var requestBody ResolveVersionRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	date, err := time.Parse(time.DateOnly, requestBody.Date)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("could not parse date: %w", err), c, 400)
		return
	}

	version, err := m.VersionResolver.Resolve(requestBody.Dao, date)
	if err != nil {
		if errors.As(err, &domain.UnknownDAOError{}) {
			returnErrorJsonCode(err, c, 404)
			return
		}
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, ResolveVersionResponse{
		Dao:     requestBody.Dao,
		Date:    requestBody.Date,
		Version: version,
	})
}

type DaoListEntry struct {
	Dao             string          `json:"dao"`
	Versions        int             `json:"versions"`
	StartDate       string          `json:"startDate"`
	DefaultSelected domain.MonthKey `json:"defaultSelected"`
	AvailableMax    domain.MonthKey `json:"availableMax"`
}

func (m ApiHandler) listDaos(c *gin.Context) {
	now := time.Now().UTC()

	out := []DaoListEntry{}
	for _, config := range m.DaoConfigRepository.List() {
		out = append(out, DaoListEntry{
			Dao:             config.DAOID,
			Versions:        len(config.Versions),
			StartDate:       config.StartDate().Format(time.DateOnly),
			DefaultSelected: config.DefaultSelected(now),
			AvailableMax:    config.AvailableMax(now),
		})
	}

	c.JSON(200, gin.H{"daos": out})
}
