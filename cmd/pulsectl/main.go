package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"

	serverURL string
	locale    string
	hours     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "pulsectl",
	Short:   "Operator CLI for the pulse orchestrator",
	Version: version,
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Precompute the analysis bundle for every locale",
	RunE: func(cmd *cobra.Command, args []string) error {
		locales := []string{"zh", "en", "ja"}
		client := &http.Client{Timeout: 10 * time.Minute}

		var g errgroup.Group
		for _, loc := range locales {
			g.Go(func() error {
				start := time.Now()
				body, err := postJSON(client, serverURL+"/api/analysis/run", map[string]string{"locale": loc})
				if err != nil {
					return fmt.Errorf("warm %s: %w", loc, err)
				}
				var bundle struct {
					Results map[string]string `json:"results"`
				}
				_ = json.Unmarshal(body, &bundle)
				fmt.Printf("warmed %s: %d tasks in %s\n", loc, len(bundle.Results), time.Since(start).Round(time.Second))
				return nil
			})
		}
		return g.Wait()
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask one question against the cached news snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Minute}
		body, err := postJSON(client, serverURL+"/api/chat", map[string]interface{}{
			"question": args[0],
			"hours":    hours,
			"locale":   locale,
		})
		if err != nil {
			return err
		}
		var resp struct {
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
		fmt.Println(resp.Answer)
		return nil
	},
}

var traceCmd = &cobra.Command{
	Use:   "trace [title]",
	Short: "Trace the provenance of one news item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		client := &http.Client{Timeout: 5 * time.Minute}
		body, err := postJSON(client, serverURL+"/api/trace", map[string]string{
			"title":  args[0],
			"source": source,
			"locale": locale,
		})
		if err != nil {
			return err
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
		fmt.Println(pretty.String())
		return nil
	},
}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Fire the crawl-complete webhook to start a background analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		body, err := postJSON(client, serverURL+"/api/webhook/crawl-complete", map[string]string{})
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

func postJSON(client *http.Client, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3001", "Orchestrator base URL")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "en", "Locale for prompts and answers")
	chatCmd.Flags().IntVar(&hours, "hours", 24, "News window in hours")
	traceCmd.Flags().String("source", "", "Platform the item was seen on")

	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(triggerCmd)
}
