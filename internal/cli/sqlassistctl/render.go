package sqlassistctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

type answer struct {
	Question    string   `json:"question"`
	SQL         string   `json:"sql"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
	Explanation string   `json:"explanation"`
	Error       string   `json:"error"`
	DurationMs  int64    `json:"duration_ms"`
}

type palette struct {
	heading *color.Color
	failure *color.Color
	success *color.Color
}

// newPalette builds the colors for one run. disabled turns them off for this run only;
// otherwise color.NoColor (terminal detection) decides.
func newPalette(disabled bool) palette {
	p := palette{
		heading: color.New(color.FgCyan, color.Bold),
		failure: color.New(color.FgRed),
		success: color.New(color.FgGreen),
	}
	if disabled {
		p.heading.DisableColor()
		p.failure.DisableColor()
		p.success.DisableColor()
	}
	return p
}

// render prints a human readable view of a response. Commands without a dedicated
// view fall back to indented JSON.
func render(w io.Writer, colors palette, command string, raw []byte) error {
	var resp answer
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	switch command {
	case "ask", "query", "translate", "explain":
		if err := decoder.Decode(&resp); err != nil {
			return err
		}
	case "examples":
		var body struct {
			Examples []string `json:"examples"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return err
		}
		_, _ = colors.heading.Fprintln(w, "Try These Examples")
		for _, example := range body.Examples {
			_, _ = fmt.Fprintf(w, "  - %s\n", example)
		}
		return nil
	default:
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return err
		}
		_, _ = colors.success.Fprintf(w, "%v\n", body["status"])
		return nil
	}

	if resp.SQL != "" {
		_, _ = colors.heading.Fprintln(w, "Generated SQL Query:")
		_, _ = fmt.Fprintln(w, resp.SQL)
	}
	if resp.Error != "" {
		_, _ = colors.failure.Fprintf(w, "Error: %s\n", resp.Error)
		return nil
	}
	if resp.Columns != nil {
		_, _ = colors.heading.Fprintln(w, "Query Result")
		writeTable(w, resp.Columns, resp.Rows)
	}
	if resp.Explanation != "" {
		_, _ = colors.heading.Fprintln(w, "SQL Explanation")
		_, _ = fmt.Fprintln(w, resp.Explanation)
	}
	return nil
}

func writeTable(w io.Writer, columns []string, rows [][]any) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = formatCell(value)
		}
		table.Append(cells)
	}
	table.Render()
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "None"
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
