package api

import (
	"github.com/gin-gonic/gin"

	"github.com/inlethq/inlet"
	"github.com/inlethq/inlet/api/middleware"
	"github.com/inlethq/inlet/config"
)

type Api struct {
	inlet  *inlet.Inlet
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/imports/contacts", a.ImportContacts)
	router.POST("/imports/vision-models", a.ImportVisionModels)
	router.POST("/imports/accounts", a.BulkUpdateAccounts)
	router.GET("/imports/:id", a.GetImportRun)
	return a.router
}

func NewAPI(i *inlet.Inlet) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{inlet: i, router: r}
}
