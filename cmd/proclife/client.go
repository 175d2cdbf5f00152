package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/loykin/proclife/pkg/client"
)

var defaultAPIUrl = client.DefaultConfig().BaseURL

func apiClient(apiURL string) *client.Client {
	return client.New(client.Config{BaseURL: apiURL})
}

// postPriority sends a manual override request to a running daemon.
func postPriority(apiURL string, pid int32, priority int) error {
	if err := apiClient(apiURL).SetPriority(context.Background(), pid, priority); err != nil {
		return err
	}
	fmt.Printf("priority %d requested for pid %d\n", priority, pid)
	return nil
}

// printStatus fetches and renders the daemon's tracked process table.
func printStatus(w io.Writer, apiURL string) error {
	statuses, err := apiClient(apiURL).Status(context.Background())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%-8s %-20s %-12s %8s %6s  %s\n",
		"PID", "NAME", "STATE", "SCORE", "OOM", "LAST ACTIVE")
	for _, st := range statuses {
		_, _ = fmt.Fprintf(w, "%-8d %-20s %-12s %8.2f %6d  %s\n",
			st.PID, st.Name, st.State, st.Importance, st.OOMScore,
			st.LastActive.Format(time.RFC3339))
	}
	return nil
}
