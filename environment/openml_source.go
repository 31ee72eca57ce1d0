package environment

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/arrowbench/banditbench/cache"
	"github.com/arrowbench/banditbench/encode"
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

const openmlBaseURL = "https://www.openml.org"

// openmlFetchSem bounds concurrent OpenML HTTP fetches across every
// OpenMLSource in the process, the way the upstream client limits itself
// to 3 parallel requests out of consideration for the shared service.
var openmlFetchSem = make(chan struct{}, 3)

var (
	openmlRateMu   sync.Mutex
	openmlLastFetch time.Time
)

// considerateDelay sleeps out the remainder of a 1-second spacing window
// since the last OpenML fetch from this process, the "considerate" rate
// limit the upstream client applies.
func considerateDelay() {
	openmlRateMu.Lock()
	defer openmlRateMu.Unlock()
	if wait := time.Second - time.Since(openmlLastFetch); wait > 0 {
		time.Sleep(wait)
	}
	openmlLastFetch = time.Now()
}

// OpenMLSource fetches a dataset's description, features, and rows from
// OpenML, memoizing every fetch through a Cacher keyed the way the
// upstream client names its cache entries: openml_{id:0>6}_{suffix}.
type OpenMLSource struct {
	DataID      int
	APIKey      string
	Cacher      cache.Cacher
	HTTPClient  *http.Client
	Target      string // optional; resolved from the classification task if empty
}

func (s *OpenMLSource) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}

func (s *OpenMLSource) cacheKey(suffix string) string {
	return fmt.Sprintf("openml_%06d_%s", s.DataID, suffix)
}

// httpFetch issues a GET, rate-limited and semaphore-bounded, and returns
// the raw response body lines. 412 indicates a missing/invalid API key;
// 404 indicates the dataset/resource doesn't exist.
func (s *OpenMLSource) httpFetch(url string) ([][]byte, error) {
	openmlFetchSem <- struct{}{}
	defer func() { <-openmlFetchSem }()
	considerateDelay()

	if s.APIKey != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "api_key=" + s.APIKey
	}

	resp, err := s.httpClient().Get(url)
	if err != nil {
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: "openml request failed", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through
	case http.StatusPreconditionFailed: // 412
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: "openml api key required or invalid"}
	case http.StatusNotFound:
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorDeactivated, Msg: "openml resource not found"}
	default:
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: fmt.Sprintf("openml returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.EnvironmentError{Kind: types.EnvironmentErrorFetch, Msg: "reading openml response", Err: err}
	}
	return splitLines(body), nil
}

func splitLines(b []byte) [][]byte {
	var lines [][]byte
	for _, l := range strings.Split(string(b), "\n") {
		lines = append(lines, []byte(l))
	}
	return lines
}

func joinLines(lines [][]byte) []byte {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = string(l)
	}
	return []byte(strings.Join(parts, "\n"))
}

type dataDescriptionResponse struct {
	DataSetDescription struct {
		Status string `json:"status"`
		FileID string `json:"file_id"`
	} `json:"data_set_description"`
}

type dataFeaturesResponse struct {
	DataFeatures struct {
		Feature []struct {
			Name            string `json:"name"`
			DataType        string `json:"data_type"`
			IsTarget        string `json:"is_target"`
			IsIgnore        string `json:"is_ignore"`
			IsRowIdentifier string `json:"is_row_identifier"`
		} `json:"feature"`
	} `json:"data_features"`
}

type taskListResponse struct {
	Tasks struct {
		Task []struct {
			TaskTypeID int `json:"task_type_id"`
			Input      []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"input"`
		} `json:"task"`
	} `json:"tasks"`
}

func (s *OpenMLSource) fetchJSON(url, cacheSuffix string, out any) error {
	lines, err := s.Cacher.GetOrPut(s.cacheKey(cacheSuffix), func() ([][]byte, error) {
		return s.httpFetch(url)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(joinLines(lines), out)
}

// resolveTarget follows the /api/v1/json/task/list/data_id/{id} endpoint to
// find the classification task (task_type_id == 1) naming this dataset's
// target attribute, the precursor logic this module carries forward from
// the classification-specific OpenML client this source is modeled on.
func (s *OpenMLSource) resolveTarget() (string, error) {
	if s.Target != "" {
		return s.Target, nil
	}

	var tasks taskListResponse
	url := fmt.Sprintf("%s/api/v1/json/task/list/data_id/%d", openmlBaseURL, s.DataID)
	if err := s.fetchJSON(url, "tasks", &tasks); err != nil {
		return "", err
	}

	for _, task := range tasks.Tasks.Task {
		if task.TaskTypeID != 1 {
			continue
		}
		for _, in := range task.Input {
			if in.Name == "target_feature" {
				return in.Value, nil
			}
		}
	}
	return "", &types.EnvironmentError{Kind: types.EnvironmentErrorParse, Msg: "unable to resolve target feature from openml tasks"}
}

// columnEncoders derives one ColumnEncoder per non-ignored feature from
// OpenML's reported per-column data_type, so numeric columns parse to
// types.Number and the rest stay nominal strings.
func columnEncoders(feats dataFeaturesResponse, ignored []string) []encode.ColumnEncoder {
	isIgnored := make(map[string]bool, len(ignored))
	for _, c := range ignored {
		isIgnored[c] = true
	}

	encoders := make([]encode.ColumnEncoder, 0, len(feats.DataFeatures.Feature))
	for _, f := range feats.DataFeatures.Feature {
		if isIgnored[f.Name] {
			continue
		}
		kind := encode.EncodeNominalString
		switch f.DataType {
		case "numeric", "real", "integer":
			kind = encode.EncodeNumeric
		}
		encoders = append(encoders, encode.ColumnEncoder{Column: f.Name, Kind: kind})
	}
	return encoders
}

// Build resolves the dataset's description/features/target, fetches its
// rows as CSV (there is no ARFF fallback), and assembles the
// Drop -> Reservoir -> Default -> Encode -> Structure pipeline §4.5
// prescribes for tabular environments.
func (s *OpenMLSource) Build(reservoirSize int, reservoirSeed int64) (pipe.Source[encode.Structured], *types.EnvParams, error) {
	var desc dataDescriptionResponse
	descURL := fmt.Sprintf("%s/api/v1/json/data/%d", openmlBaseURL, s.DataID)
	if err := s.fetchJSON(descURL, "descr", &desc); err != nil {
		return nil, nil, err
	}
	if desc.DataSetDescription.Status == "deactivated" {
		return nil, nil, &types.EnvironmentError{Kind: types.EnvironmentErrorDeactivated, Msg: fmt.Sprintf("openml dataset %d is deactivated", s.DataID)}
	}

	var feats dataFeaturesResponse
	featsURL := fmt.Sprintf("%s/api/v1/json/data/features/%d", openmlBaseURL, s.DataID)
	if err := s.fetchJSON(featsURL, "feats", &feats); err != nil {
		return nil, nil, err
	}

	target, err := s.resolveTarget()
	if err != nil {
		return nil, nil, err
	}

	var ignored []string
	for _, f := range feats.DataFeatures.Feature {
		if f.IsIgnore == "true" || f.IsRowIdentifier == "true" {
			ignored = append(ignored, f.Name)
		}
	}

	fileID := desc.DataSetDescription.FileID
	csvURL := fmt.Sprintf("%s/data/v1/get_csv/%s", openmlBaseURL, fileID)

	csvLines, err := s.Cacher.GetOrPut(s.cacheKey("csv"), func() ([][]byte, error) {
		return s.httpFetch(csvURL)
	})
	if err != nil {
		return nil, nil, err
	}

	reader := encode.NewCSVReader(func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(string(joinLines(csvLines)))), nil
	}, encode.CSVConfig{HasHeader: true})

	var source pipe.Source[encode.Row] = reader
	source = pipe.Join[encode.Row, encode.Row](source, encode.Drop{
		Columns:      ignored,
		RowPredicate: func(r encode.Row) bool { return r.HasMissing() },
	})
	if reservoirSize > 0 {
		source = pipe.Join[encode.Row, encode.Row](source, encode.Reservoir{K: reservoirSize, Seed: reservoirSeed, KeepFirst: true})
	}
	source = pipe.Join[encode.Row, encode.Row](source, encode.Default{Values: map[string]types.Value{target: types.String("0")}})
	source = pipe.Join[encode.Row, encode.Row](source, encode.Encode{Encoders: columnEncoders(feats, ignored)})

	structured := pipe.Join[encode.Row, encode.Structured](source, encode.Structure{Target: target})

	params := types.NewEnvParams().
		Set("source", "openml").
		Set("data_id", s.DataID).
		Set("target", target)

	return structured, params, nil
}
