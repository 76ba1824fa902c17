package sqlassistctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type command struct {
	method   string
	path     string
	argument string
	usage    string
}

var commands = map[string]command{
	"health":    {method: http.MethodGet, path: "/v1/health", usage: "GET /v1/health"},
	"ready":     {method: http.MethodGet, path: "/v1/ready", usage: "GET /v1/ready"},
	"examples":  {method: http.MethodGet, path: "/v1/examples", usage: "GET /v1/examples"},
	"ask":       {method: http.MethodPost, path: "/v1/ask", argument: "question", usage: "POST /v1/ask <question>"},
	"translate": {method: http.MethodPost, path: "/v1/query/translate", argument: "question", usage: "POST /v1/query/translate <question>"},
	"query":     {method: http.MethodPost, path: "/v1/query", argument: "sql", usage: "POST /v1/query <sql>"},
	"explain":   {method: http.MethodPost, path: "/v1/query/explain", argument: "sql", usage: "POST /v1/query/explain <sql>"},
}

var commandOrder = []string{"health", "ready", "examples", "ask", "translate", "query", "explain"}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("sqlassistctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "sqlassist API base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 30s)")
	rawJSON := fs.Bool("json", false, "print the raw JSON response")
	noColor := fs.Bool("no-color", false, "disable colored output")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	name := strings.TrimSpace(fs.Arg(0))
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		writeUsage(stderr)
		return 2
	}

	var payload []byte
	if cmd.argument != "" {
		value := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
		if value == "" {
			_, _ = fmt.Fprintf(stderr, "%s requires a %s argument\n\n", name, cmd.argument)
			writeUsage(stderr)
			return 2
		}
		encoded, err := json.Marshal(map[string]string{cmd.argument: value})
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "encode request: %v\n", err)
			return 1
		}
		payload = encoded
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	endpoint := strings.TrimRight(*baseURL, "/") + cmd.path
	code, responseBody, err := doRequest(ctx, client, cmd.method, endpoint, payload)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}
	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if *rawJSON {
		printJSON(stdout, responseBody)
		return 0
	}
	if err := render(stdout, newPalette(*noColor), name, responseBody); err != nil {
		printJSON(stdout, responseBody)
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, method, url string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func printJSON(w io.Writer, raw []byte) {
	if pretty, ok := prettyJSON(raw); ok {
		_, _ = fmt.Fprintln(w, pretty)
		return
	}
	if len(raw) > 0 {
		_, _ = fmt.Fprintln(w, string(raw))
	}
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: sqlassistctl [flags] <command> [argument]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
