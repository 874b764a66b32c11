package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/smirnypavel/edu-backend/pkg/aireview"
	"github.com/smirnypavel/edu-backend/pkg/db"
	"github.com/smirnypavel/edu-backend/pkg/grading"
	emailsending "github.com/smirnypavel/edu-backend/pkg/messaging/email-sending"
	smtpclient "github.com/smirnypavel/edu-backend/pkg/smtp-client"
	usermanagement "github.com/smirnypavel/edu-backend/pkg/user-management"
	"github.com/smirnypavel/edu-backend/pkg/user-management/pwhash"
	"github.com/smirnypavel/edu-backend/pkg/utils"

	courseDB "github.com/smirnypavel/edu-backend/pkg/db/course"
	userDB "github.com/smirnypavel/edu-backend/pkg/db/user"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_USER_DB_USERNAME   = "USER_DB_USERNAME"
	ENV_USER_DB_PASSWORD   = "USER_DB_PASSWORD"
	ENV_COURSE_DB_USERNAME = "COURSE_DB_USERNAME"
	ENV_COURSE_DB_PASSWORD = "COURSE_DB_PASSWORD"

	ENV_USER_JWT_SIGN_KEY   = "USER_JWT_SIGN_KEY"
	ENV_USER_JWT_EXPIRES_IN = "USER_JWT_EXPIRES_IN"
	ENV_AI_API_KEY          = "AI_API_KEY"
	ENV_CODE_RUNNER_API_KEY = "CODE_RUNNER_API_KEY"
)

type LearningApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		BcryptCost    int `json:"bcrypt_cost" yaml:"bcrypt_cost"`
		UserJWTConfig struct {
			SignKey   string        `json:"sign_key" yaml:"sign_key"`
			ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
		} `json:"user_jwt_config" yaml:"user_jwt_config"`
		MaxNewUsersPer5Minutes int `json:"max_new_users_per_5_minutes" yaml:"max_new_users_per_5_minutes"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		UserDB   db.DBConfigYaml `json:"user_db" yaml:"user_db"`
		CourseDB db.DBConfigYaml `json:"course_db" yaml:"course_db"`
	} `json:"db_configs" yaml:"db_configs"`

	MessagingConfigs struct {
		SmtpServerConfigPath string `json:"smtp_server_config_path" yaml:"smtp_server_config_path"`
		FrontendBaseURL      string `json:"frontend_base_url" yaml:"frontend_base_url"`
	} `json:"messaging_configs" yaml:"messaging_configs"`

	// AI assistant configs
	AIConfigs struct {
		URL            string        `json:"url" yaml:"url"`
		APIKey         string        `json:"api_key" yaml:"api_key"`
		Model          string        `json:"model" yaml:"model"`
		RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	} `json:"ai_configs" yaml:"ai_configs"`

	// Code execution sandbox configs
	CodeRunnerConfigs struct {
		URL         string        `json:"url" yaml:"url"`
		APIKey      string        `json:"api_key" yaml:"api_key"`
		TestTimeout time.Duration `json:"test_timeout" yaml:"test_timeout"`
	} `json:"code_runner_configs" yaml:"code_runner_configs"`
}

var (
	userDBService   *userDB.UserDBService
	courseDBService *courseDB.CourseDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if conf.UserManagementConfig.BcryptCost > 0 {
		pwhash.InitBcryptCost(conf.UserManagementConfig.BcryptCost)
	}

	initUserManagement()

	initGrading()

	initMessageSendingConfig()

	initAIAssistant()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_USER_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.UserDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_USER_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.UserDB.Password = dbPassword
	}

	if dbUsername := os.Getenv(ENV_COURSE_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.CourseDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_COURSE_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.CourseDB.Password = dbPassword
	}

	if userJwtSignKey := os.Getenv(ENV_USER_JWT_SIGN_KEY); userJwtSignKey != "" {
		conf.UserManagementConfig.UserJWTConfig.SignKey = userJwtSignKey
	}

	if expInVal := os.Getenv(ENV_USER_JWT_EXPIRES_IN); expInVal != "" {
		expiresIn, err := utils.ParseDurationString(expInVal)
		if err != nil {
			slog.Error("error parsing JWT expiry override", slog.String("error", err.Error()), slog.String(ENV_USER_JWT_EXPIRES_IN, expInVal))
			panic(err)
		}
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn = expiresIn
	}

	if aiAPIKey := os.Getenv(ENV_AI_API_KEY); aiAPIKey != "" {
		conf.AIConfigs.APIKey = aiAPIKey
	}

	if runnerAPIKey := os.Getenv(ENV_CODE_RUNNER_API_KEY); runnerAPIKey != "" {
		conf.CodeRunnerConfigs.APIKey = runnerAPIKey
	}
}

func initDBs() {
	var err error
	userDBService, err = userDB.NewUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.UserDB))
	if err != nil {
		slog.Error("Error connecting to User DB", slog.String("error", err.Error()))
		return
	}

	courseDBService, err = courseDB.NewCourseDBService(db.DBConfigFromYamlObj(conf.DBConfigs.CourseDB))
	if err != nil {
		slog.Error("Error connecting to Course DB", slog.String("error", err.Error()))
		return
	}
}

func initUserManagement() {
	usermanagement.Init(
		userDBService,
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn,
	)
}

func initGrading() {
	grading.Init(
		courseDBService,
		&grading.HTTPTestRunner{
			RootURL: conf.CodeRunnerConfigs.URL,
			APIKey:  conf.CodeRunnerConfigs.APIKey,
		},
		conf.CodeRunnerConfigs.TestTimeout,
	)
}

func initMessageSendingConfig() {
	if conf.MessagingConfigs.SmtpServerConfigPath == "" {
		slog.Warn("smtp server config path not set, email sending disabled")
		return
	}

	var smtpServers smtpclient.SmtpServerList
	if err := smtpServers.ReadFromFile(conf.MessagingConfigs.SmtpServerConfigPath); err != nil {
		panic(err)
	}

	smtpClients, err := smtpclient.NewSmtpClients(smtpServers)
	if err != nil {
		panic(err)
	}

	emailsending.InitMessageSendingVariables(
		smtpClients,
		conf.MessagingConfigs.FrontendBaseURL,
	)
}

func initAIAssistant() {
	if conf.AIConfigs.URL == "" {
		slog.Warn("AI assistant url not set, assistant endpoints disabled")
		return
	}
	aireview.Init(
		conf.AIConfigs.URL,
		conf.AIConfigs.APIKey,
		conf.AIConfigs.Model,
		conf.AIConfigs.RequestTimeout,
	)
}
