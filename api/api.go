package api

import (
	"delegatecomp/internal/calculator"
	"delegatecomp/internal/logger"
	"delegatecomp/internal/repository"
	"delegatecomp/internal/service"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	DelegateService     service.DelegateService
	SummaryService      service.SummaryService
	VersionResolver     calculator.VersionResolver
	DaoConfigRepository repository.DaoConfigRepository
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddlware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to delegate compensation"})
	})
	router.GET("/daos", m.listDaos)
	router.POST("/delegatesForMonth", m.delegatesForMonth)
	router.POST("/allDelegates", m.allDelegates)
	router.POST("/resolveVersion", m.resolveVersion)
	router.POST("/monthSummary", m.monthSummary)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	logger.Error(err)
	c.AbortWithStatusJSON(500, gin.H{
		"error": err.Error(),
	})
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.Error(err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddlware(ctx *gin.Context) {
	requestID := uuid.NewString()
	ctx.Set("requestID", requestID)

	start := time.Now().UTC()
	ctx.Next()

	logger.Info(
		"%s %s -> %d (%dms) requestID=%s",
		ctx.Request.Method,
		ctx.Request.URL.Path,
		ctx.Writer.Status(),
		time.Since(start).Milliseconds(),
		requestID,
	)
}
