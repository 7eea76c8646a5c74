package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type view struct {
	TargetURL      string `json:"targetUrl"`
	ExpectedCode   int    `json:"expectedCode"`
	CycleDuration  int64  `json:"cycleDuration"`
	NetworkTimeout int64  `json:"networkTimeout"`
}

type client struct {
	base string
	key  string
	http *http.Client
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	c := &client{base: strings.TrimRight(api, "/"), key: os.Getenv("CONTROL_API_KEY"), http: &http.Client{Timeout: 10 * time.Second}}
	if err := edit(c, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// edit prompts for each setting, showing the current value. An empty answer
// keeps it; typing "reset" at any prompt restores the defaults instead.
func edit(c *client, in *bufio.Reader, out io.Writer) error {
	cur, err := c.get()
	if err != nil {
		return err
	}
	for {
		answers, reset, err := prompt(in, out, cur)
		if err != nil {
			return err
		}
		var saved view
		if reset {
			saved, err = c.send(http.MethodPost, "/api/settings/reset", nil)
		} else {
			saved, err = c.send(http.MethodPut, "/api/settings", answers)
		}
		var bad *badInput
		if errors.As(err, &bad) {
			fmt.Fprintf(out, "Invalid %s: %s. Try again.\n", bad.Field, bad.Msg)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved: %s expecting %d, every %d ms, timeout %d ms\n",
			saved.TargetURL, saved.ExpectedCode, saved.CycleDuration, saved.NetworkTimeout)
		return nil
	}
}

func prompt(in *bufio.Reader, out io.Writer, cur view) (map[string]string, bool, error) {
	fields := []struct{ key, label, current string }{
		{"targetUrl", "Target URL", cur.TargetURL},
		{"expectedCode", "Expected HTTP code", strconv.Itoa(cur.ExpectedCode)},
		{"cycleDuration", "Cycle duration (ms)", strconv.FormatInt(cur.CycleDuration, 10)},
		{"networkTimeout", "Network timeout (ms)", strconv.FormatInt(cur.NetworkTimeout, 10)},
	}
	answers := map[string]string{}
	for _, f := range fields {
		fmt.Fprintf(out, "%s [%s]: ", f.label, f.current)
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, false, fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "reset") {
			return nil, true, nil
		}
		if line == "" {
			line = f.current
		}
		answers[f.key] = line
	}
	return answers, false, nil
}

type badInput struct {
	Field string
	Msg   string
}

func (e *badInput) Error() string { return e.Field + ": " + e.Msg }

func (c *client) get() (view, error) {
	req, _ := http.NewRequest(http.MethodGet, c.base+"/api/settings", nil)
	return c.do(req)
}

func (c *client) send(method, path string, body map[string]string) (view, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return view{}, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		return view{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) do(req *http.Request) (view, error) {
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return view{}, fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var e struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return view{}, &badInput{Field: e.Field, Msg: e.Error}
	case resp.StatusCode/100 != 2:
		return view{}, fmt.Errorf("API returned status: %s", resp.Status)
	}
	var v view
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return view{}, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
