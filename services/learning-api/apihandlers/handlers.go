package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	courseDB "github.com/smirnypavel/edu-backend/pkg/db/course"
	userDB "github.com/smirnypavel/edu-backend/pkg/db/user"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	userDBConn             *userDB.UserDBService
	courseDBConn           *courseDB.CourseDBService
	tokenSignKey           string
	tokenExpiresIn         time.Duration
	maxNewUsersPer5Minutes int
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	userDBConn *userDB.UserDBService,
	courseDBConn *courseDB.CourseDBService,
	maxNewUsersPer5Minutes int,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:           tokenSignKey,
		tokenExpiresIn:         tokenExpiresIn,
		userDBConn:             userDBConn,
		courseDBConn:           courseDBConn,
		maxNewUsersPer5Minutes: maxNewUsersPer5Minutes,
	}
}
