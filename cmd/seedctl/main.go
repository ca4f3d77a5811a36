// seedctl bulk-loads login credentials through the service's seed endpoint.
// Input is a CSV (or TSV) of emp_id,pin[,device_id] rows; an optional header
// row is skipped. The admin key comes from -key, SEED_ADMIN_KEY, or a
// no-echo terminal prompt.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iammonth1997/tdlao-hr-web/internal/server/models"
	"golang.org/x/term"
)

const maxBatchSize = 500

type seedResponse struct {
	OK     int                `json:"ok"`
	Failed int                `json:"failed"`
	Errors []models.SeedError `json:"errors"`
	Error  string             `json:"error"`
}

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "auth service base URL")
		filePath  = flag.String("file", "", "CSV file with emp_id,pin[,device_id] rows")
		key       = flag.String("key", "", "seed admin key (falls back to SEED_ADMIN_KEY, then prompt)")
		batchSize = flag.Int("batch", maxBatchSize, "records per request")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "seedctl: -file is required")
		flag.Usage()
		os.Exit(2)
	}
	if *batchSize < 1 || *batchSize > maxBatchSize {
		fmt.Fprintf(os.Stderr, "seedctl: -batch must be between 1 and %d\n", maxBatchSize)
		os.Exit(2)
	}

	adminKey, err := resolveKey(*key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seedctl: %v\n", err)
		os.Exit(1)
	}

	records, err := readRecords(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seedctl: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "seedctl: no records found")
		os.Exit(1)
	}

	fmt.Printf("Seeding %d records to %s\n", len(records), *serverURL)

	client := &http.Client{Timeout: 30 * time.Second}
	var totalOK, totalFailed int

	for start := 0; start < len(records); start += *batchSize {
		end := start + *batchSize
		if end > len(records) {
			end = len(records)
		}

		resp, err := postBatch(client, *serverURL, adminKey, records[start:end])
		if err != nil {
			fmt.Fprintf(os.Stderr, "seedctl: batch %d-%d: %v\n", start+1, end, err)
			os.Exit(1)
		}

		totalOK += resp.OK
		totalFailed += resp.Failed
		for _, e := range resp.Errors {
			fmt.Printf("  failed %s: %s\n", e.EmpID, e.Error)
		}
	}

	fmt.Printf("Done: %d ok, %d failed\n", totalOK, totalFailed)
	if totalFailed > 0 {
		os.Exit(1)
	}
}

func resolveKey(flagKey string) (string, error) {
	if flagKey != "" {
		return flagKey, nil
	}
	if env := os.Getenv("SEED_ADMIN_KEY"); env != "" {
		return env, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no admin key: set -key or SEED_ADMIN_KEY")
	}

	fmt.Print("Seed admin key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("empty admin key")
	}
	return key, nil
}

// readRecords parses the input file. Field separator is sniffed from the
// first line so exported TSVs work unmodified.
func readRecords(path string) ([]models.SeedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	if firstLine, _, ok := strings.Cut(string(data), "\n"); ok || firstLine != "" {
		if strings.Contains(firstLine, "\t") {
			r.Comma = '\t'
		}
	}
	r.FieldsPerRecord = -1

	var records []models.SeedRecord
	for i := 0; ; i++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if len(row) < 2 {
			continue
		}
		// skip a header row
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "emp_id") {
			continue
		}

		rec := models.SeedRecord{
			EmpID: strings.TrimSpace(row[0]),
			PIN:   strings.TrimSpace(row[1]),
		}
		if len(row) > 2 {
			rec.DeviceID = strings.TrimSpace(row[2])
		}
		records = append(records, rec)
	}

	return records, nil
}

func postBatch(client *http.Client, serverURL, adminKey string, batch []models.SeedRecord) (*seedResponse, error) {
	body, err := json.Marshal(map[string]any{"records": batch})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(serverURL, "/")+"/seed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Seed-Key", adminKey)

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out seedResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = res.Status
		}
		return nil, fmt.Errorf("server: %s", msg)
	}
	return &out, nil
}
