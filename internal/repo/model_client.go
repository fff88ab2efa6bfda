package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/transitstack/exosift/internal/models"
)

// ModelServiceClient wraps the external classification service. The service
// is trusted to preserve submission order and count; results are mapped back
// onto records positionally.
type ModelServiceClient struct {
	baseURL     string
	predictPath string
	healthPath  string
	httpClient  *http.Client
}

// NewModelServiceClient constructs a client targeting the configured model
// service instance.
func NewModelServiceClient(baseURL, predictPath, healthPath string, timeout time.Duration) *ModelServiceClient {
	return &ModelServiceClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		predictPath: predictPath,
		healthPath:  healthPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// wireRecord serialises a record's contract features in canonical order.
type wireRecord struct {
	FlagNotTransit     float64 `json:"koi_fpflag_nt"`
	FlagStellarEclipse float64 `json:"koi_fpflag_ss"`
	FlagCentroidOffset float64 `json:"koi_fpflag_co"`
	FlagEphemerisMatch float64 `json:"koi_fpflag_ec"`
	Period             float64 `json:"koi_period"`
	Impact             float64 `json:"koi_impact"`
	Duration           float64 `json:"koi_duration"`
	Depth              float64 `json:"koi_depth"`
	PlanetRadius       float64 `json:"koi_prad"`
	EquilibriumTemp    float64 `json:"koi_teq"`
	Insolation         float64 `json:"koi_insol"`
	ModelSNR           float64 `json:"koi_model_snr"`
	StellarTemp        float64 `json:"koi_steff"`
	StellarGravity     float64 `json:"koi_slogg"`
	StellarRadius      float64 `json:"koi_srad"`
	StellarMagnitude   float64 `json:"koi_kepmag"`
}

func toWire(rec *models.Record) wireRecord {
	return wireRecord{
		FlagNotTransit:     rec.Feature(models.FeatureFlagNotTransit),
		FlagStellarEclipse: rec.Feature(models.FeatureFlagStellarEclipse),
		FlagCentroidOffset: rec.Feature(models.FeatureFlagCentroidOffset),
		FlagEphemerisMatch: rec.Feature(models.FeatureFlagEphemerisMatch),
		Period:             rec.Feature(models.FeaturePeriod),
		Impact:             rec.Feature(models.FeatureImpact),
		Duration:           rec.Feature(models.FeatureDuration),
		Depth:              rec.Feature(models.FeatureDepth),
		PlanetRadius:       rec.Feature(models.FeaturePlanetRadius),
		EquilibriumTemp:    rec.Feature(models.FeatureEquilibriumTemp),
		Insolation:         rec.Feature(models.FeatureInsolation),
		ModelSNR:           rec.Feature(models.FeatureModelSNR),
		StellarTemp:        rec.Feature(models.FeatureStellarTemp),
		StellarGravity:     rec.Feature(models.FeatureStellarGravity),
		StellarRadius:      rec.Feature(models.FeatureStellarRadius),
		StellarMagnitude:   rec.Feature(models.FeatureStellarMagnitude),
	}
}

// CheckReady probes the service readiness endpoint. A service without a
// loaded model is unavailable; the condition is fatal for the batch and never
// retried here.
func (c *ModelServiceClient) CheckReady(ctx context.Context) error {
	if c == nil || c.baseURL == "" {
		return &models.ServiceUnavailableError{Reason: "model service not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolvePath(c.healthPath), nil)
	if err != nil {
		return &models.ServiceUnavailableError{Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.ServiceUnavailableError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.ServiceUnavailableError{Reason: fmt.Sprintf("health probe returned %s", resp.Status)}
	}

	var health struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return &models.ServiceUnavailableError{Reason: fmt.Sprintf("decode health response: %v", err)}
	}
	if !health.ModelLoaded {
		return &models.ServiceUnavailableError{Reason: "no model loaded"}
	}
	return nil
}

// Submit sends reconciled records for classification and maps each response
// item positionally onto its originating record.
func (c *ModelServiceClient) Submit(ctx context.Context, records []models.Record) ([]models.Prediction, error) {
	if c == nil || c.baseURL == "" {
		return nil, &models.ServiceUnavailableError{Reason: "model service not configured"}
	}

	data := make([]wireRecord, 0, len(records))
	for i := range records {
		data = append(data, toWire(&records[i]))
	}
	payload := map[string]any{"data": data}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal predict payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolvePath(c.predictPath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.ServiceUnavailableError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	var envelope struct {
		Success      bool   `json:"success"`
		Error        string `json:"error"`
		TotalSamples int    `json:"total_samples"`
		Predictions  []struct {
			Index                    int     `json:"index"`
			Prediction               int     `json:"prediction"`
			IsExoplanet              bool    `json:"is_exoplanet"`
			Confidence               float64 `json:"confidence"`
			ExoplanetProbability     float64 `json:"exoplanet_probability"`
			FalsePositiveProbability float64 `json:"false_positive_probability"`
		} `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &models.ServiceResponseError{Message: fmt.Sprintf("undecodable response (%s)", resp.Status)}
	}

	if envelope.Error != "" {
		return nil, &models.ServiceResponseError{Message: envelope.Error}
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		return nil, &models.ServiceResponseError{Message: fmt.Sprintf("predict call returned %s", resp.Status)}
	}
	if len(envelope.Predictions) != len(records) {
		return nil, &models.ServiceResponseError{
			Message: fmt.Sprintf("returned %d predictions for %d records", len(envelope.Predictions), len(records)),
		}
	}

	predictions := make([]models.Prediction, 0, len(records))
	for i, item := range envelope.Predictions {
		predictions = append(predictions, models.Prediction{
			Row:                      records[i].Row,
			IsExoplanet:              item.IsExoplanet,
			Confidence:               item.Confidence,
			ExoplanetProbability:     item.ExoplanetProbability,
			FalsePositiveProbability: item.FalsePositiveProbability,
			Record:                   &records[i],
		})
	}
	return predictions, nil
}

func (c *ModelServiceClient) resolvePath(p string) string {
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}
