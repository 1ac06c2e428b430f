//go:build dashboard

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rivo/tview"

	"p2pbank/internal/events"
)

// This is the operator-facing dashboard spec.md §1 names as out of scope
// for the core: a pure consumer of the node's SSE event feed, kept
// build-tagged out of the default binary the same way the teacher keeps
// its tview dashboard separate from the API server.

func eventsURL() string {
	if v := os.Getenv("DASHBOARD_EVENTS_URL"); v != "" {
		return v
	}
	return "http://localhost:9090/events"
}

func main() {
	app := tview.NewApplication()
	table := tview.NewTable().SetBorders(true)
	headers := []string{"Time", "Type", "Content"}
	for i, h := range headers {
		table.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false))
	}

	row := 1
	appendEvent := func(e events.Event) {
		app.QueueUpdateDraw(func() {
			table.SetCell(row, 0, tview.NewTableCell(e.Timestamp.Format("15:04:05")))
			table.SetCell(row, 1, tview.NewTableCell(string(e.Type)))
			table.SetCell(row, 2, tview.NewTableCell(e.Content))
			row++
			table.ScrollToEnd()
		})
	}

	go streamEvents(appendEvent)

	if err := app.SetRoot(table, true).Run(); err != nil {
		panic(err)
	}
}

func streamEvents(onEvent func(events.Event)) {
	resp, err := http.Get(eventsURL())
	if err != nil {
		fmt.Fprintln(os.Stderr, "dashboard: cannot reach event stream:", err)
		return
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var e events.Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue
		}
		onEvent(e)
	}
}
