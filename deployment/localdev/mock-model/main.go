package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type predictRequest struct {
	Data []map[string]float64 `json:"data"`
}

type predictionItem struct {
	Index                    int     `json:"index"`
	Prediction               int     `json:"prediction"`
	IsExoplanet              bool    `json:"is_exoplanet"`
	Confidence               float64 `json:"confidence"`
	ExoplanetProbability     float64 `json:"exoplanet_probability"`
	FalsePositiveProbability float64 `json:"false_positive_probability"`
}

func main() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"status":       "healthy",
			"model_loaded": true,
		})
	})

	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if !enforcePost(w, r) {
			return
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Data) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if err := json.NewEncoder(w).Encode(map[string]any{"error": "No data provided"}); err != nil {
				log.Printf("encode error: %v", err)
			}
			return
		}

		// Crude stand-in rule: a deep transit with decent signal passes.
		results := make([]predictionItem, 0, len(req.Data))
		for i, row := range req.Data {
			positive := row["koi_depth"] > 100 && row["koi_model_snr"] > 10
			exoProb := 0.18
			if positive {
				exoProb = 0.91
			}
			pred := 0
			if positive {
				pred = 1
			}
			confidence := exoProb
			if !positive {
				confidence = 1 - exoProb
			}
			results = append(results, predictionItem{
				Index:                    i + 1,
				Prediction:               pred,
				IsExoplanet:              positive,
				Confidence:               confidence,
				ExoplanetProbability:     exoProb,
				FalsePositiveProbability: 1 - exoProb,
			})
		}

		writeJSON(w, map[string]any{
			"success":       true,
			"predictions":   results,
			"total_samples": len(results),
		})
	})

	logger := log.New(log.Writer(), "model-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":5000",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :5000")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func enforcePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
