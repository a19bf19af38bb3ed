// Command healthcheck probes a running inflector and exits non-zero unless it
// reports healthy. It is meant for container HEALTHCHECK directives.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
)

type healthDocument struct {
	Status string `json:"status"`
}

func main() {
	url := pflag.String("url", "http://localhost:8080/health", "Health endpoint to probe")
	timeout := pflag.Duration("timeout", 3*time.Second, "HTTP request timeout")
	pflag.Parse()

	client := &http.Client{Timeout: *timeout}
	if err := probe(client, *url); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var doc healthDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode health document: %w", err)
	}
	if doc.Status != "healthy" {
		return fmt.Errorf("service reports status %q", doc.Status)
	}
	return nil
}
