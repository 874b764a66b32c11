package main

import (
	"log/slog"
	"time"
)

func main() {
	slog.Info("Starting user management job")
	start := time.Now()

	if conf.RunTasks.CleanUpUnverifiedUsers {
		cleanUpUnverifiedUsers()
	}
	if conf.RunTasks.ClearExpiredResetTokens {
		clearExpiredResetTokens()
	}

	slog.Info("User management jobs completed", slog.Duration("duration", time.Since(start)))
}

func cleanUpUnverifiedUsers() {
	slog.Debug("Start cleaning up unverified users")

	createdBefore := time.Now().Add(-conf.UserManagementConfig.DeleteUnverifiedUsersAfter).Unix()
	count, err := userDBService.DeleteUnverifiedUsers(createdBefore)
	if err != nil {
		slog.Error("Error cleaning up unverified users", slog.String("error", err.Error()))
		return
	}

	slog.Info("Clean up unverified users finished", slog.Int("count", int(count)))
}

func clearExpiredResetTokens() {
	slog.Debug("Start clearing expired reset tokens")

	count, err := userDBService.ClearExpiredResetTokens()
	if err != nil {
		slog.Error("Error clearing expired reset tokens", slog.String("error", err.Error()))
		return
	}

	slog.Info("Clearing expired reset tokens finished", slog.Int("count", int(count)))
}
