package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ibero-data/duck-ui-sub001/internal/database/common"
)

// DatasetManifest lists example datasets made queryable on a fresh in-memory
// session at boot.
type DatasetManifest struct {
	Datasets []Dataset `json:"datasets"`
}

// Dataset points at one attachable source. URL and Path are alternatives;
// Format overrides the extension sniff when the source name carries none.
type Dataset struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

func loadDatasetManifest(path string) (*DatasetManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset manifest: %w", err)
	}

	var manifest DatasetManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse dataset manifest: %w", err)
	}
	return &manifest, nil
}

// attachManifestDatasets attaches every manifest dataset to the given handle.
// Each dataset loads independently; a failure is logged and the rest still
// attach.
func attachManifestDatasets(ctx context.Context, db *sql.DB, manifestPath, stagingDir string, log func(level, format string, args ...interface{})) {
	manifest, err := loadDatasetManifest(manifestPath)
	if err != nil {
		log("warn", "Dataset manifest %s not loaded: %v", manifestPath, err)
		return
	}

	for _, ds := range manifest.Datasets {
		if err := attachDataset(ctx, db, ds, stagingDir); err != nil {
			log("warn", "Dataset %q not attached: %v", ds.Name, err)
			continue
		}
		log("info", "Attached dataset %q", ds.Name)
	}
}

func attachDataset(ctx context.Context, db *sql.DB, ds Dataset, stagingDir string) error {
	source := ds.Path
	if source == "" {
		source = ds.URL
	}
	if source == "" {
		return fmt.Errorf("dataset has neither url nor path")
	}

	format := strings.ToLower(strings.TrimPrefix(ds.Format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(source), "."))
	}

	name := ds.Name
	if name == "" {
		name = source
	}
	alias := common.SanitizeAlias(name)

	switch format {
	case "db", "duckdb":
		// ATTACH needs a local seekable file, so remote engine files are
		// staged first. Flat-file formats go through httpfs directly.
		local := source
		if isHTTPSource(source) {
			staged, err := fetchToStaging(ctx, source, stagingDir)
			if err != nil {
				return err
			}
			local = staged
		}
		stmt := fmt.Sprintf("ATTACH %s AS %s (READ_ONLY)", quoteLiteral(local), common.QuoteIdentifier(alias))
		_, err := db.ExecContext(ctx, stmt)
		return err
	case "parquet":
		return createReaderView(ctx, db, alias, "read_parquet", source)
	case "csv":
		return createReaderView(ctx, db, alias, "read_csv_auto", source)
	case "json", "ndjson", "jsonl":
		return createReaderView(ctx, db, alias, "read_json_auto", source)
	default:
		return fmt.Errorf("unsupported dataset format %q", format)
	}
}

func createReaderView(ctx context.Context, db *sql.DB, alias, reader, source string) error {
	stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS SELECT * FROM %s(%s)",
		common.QuoteIdentifier(alias), reader, quoteLiteral(source))
	_, err := db.ExecContext(ctx, stmt)
	return err
}

func isHTTPSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// fetchToStaging downloads a remote file once and reuses the staged copy on
// later boots.
func fetchToStaging(ctx context.Context, url, stagingDir string) (string, error) {
	if stagingDir == "" {
		stagingDir = filepath.Join(os.TempDir(), "duckui-datasets")
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", err
	}

	target := filepath.Join(stagingDir, filepath.Base(url))
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp(stagingDir, filepath.Base(url)+".part-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return target, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
