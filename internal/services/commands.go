package services

import (
	"fmt"
	"strings"
	"time"
)

// HandleCommand answers a bot command with a formatted reply. Unknown
// commands are ignored.
func (s *Service) HandleCommand(command string) string {
	switch command {
	case "start":
		return "👋 Token monitor is online. Use /status for a summary or /help for commands."
	case "help":
		return strings.Join([]string{
			"<b>Commands</b>",
			"/status - engine state and counters",
			"/help - this message",
		}, "\n")
	case "status":
		snap := s.StatusSnapshot()
		return strings.Join([]string{
			"<b>Status</b>",
			fmt.Sprintf("State: %s", snap.State),
			fmt.Sprintf("Uptime: %s", snap.Uptime.Round(time.Second)),
			fmt.Sprintf("Tokens discovered: %d", snap.TokensDiscovered),
			fmt.Sprintf("Milestones recorded: %d", snap.MilestonesRecorded),
			fmt.Sprintf("Actors blacklisted: %d", snap.ActorsBlacklisted),
			fmt.Sprintf("Tokens purged: %d", snap.TokensPurged),
			fmt.Sprintf("Task errors: %d", snap.TaskErrors),
		}, "\n")
	default:
		return ""
	}
}
