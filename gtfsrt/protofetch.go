package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anish3343/transit-dashboard/config"
)

// ProtoResult records the outcome of downloading one schema file.
type ProtoResult struct {
	File   string `json:"file"`
	Status string `json:"status"`
	Size   int    `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
}

// UpdateProtos downloads the GTFS-Realtime schema files into dir. Each file
// is an independent outcome; one failure does not stop the others.
func UpdateProtos(ctx context.Context, dir string) []ProtoResult {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		results := make([]ProtoResult, 0, len(config.ProtoURLs))
		for name := range config.ProtoURLs {
			results = append(results, ProtoResult{File: name, Status: "failed", Error: err.Error()})
		}
		return results
	}

	client := &http.Client{Timeout: 30 * time.Second}
	results := make([]ProtoResult, 0, len(config.ProtoURLs))
	for name, url := range config.ProtoURLs {
		size, err := downloadProto(ctx, client, url, filepath.Join(dir, name))
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("proto schema download failed")
			results = append(results, ProtoResult{File: name, Status: "failed", Error: err.Error()})
			continue
		}
		log.Info().Str("file", name).Int("size", size).Msg("proto schema updated")
		results = append(results, ProtoResult{File: name, Status: "success", Size: size})
	}
	return results
}

func downloadProto(ctx context.Context, client *http.Client, url, dest string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return 0, err
	}
	return len(body), nil
}
