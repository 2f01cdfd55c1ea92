package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/internal/stream"
	"github.com/marekkolman/rates-engine/pkg/metrics"
	"github.com/marekkolman/rates-engine/pkg/models"
)

// One recorder for the package; prometheus registration is global.
var recorder = metrics.NewRecorder()

func newTestServer() *Server {
	quotes := store.NewQuoteStore()
	return NewServer(
		Config{},
		store.NewCurveStore(),
		store.NewVolStore(),
		quotes,
		stream.NewHub(quotes, recorder),
		recorder,
	)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func buildTestCurve(t *testing.T, s *Server, id string, rate float64) {
	t.Helper()
	rr := doJSON(t, s, http.MethodPost, "/api/v1/curves", models.BuildCurveRequest{
		ID:         id,
		Currency:   "EUR",
		Settlement: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Calendar:   "NONE",
		Quotes: map[string]float64{
			"1Y": rate, "2Y": rate, "5Y": rate, "10Y": rate,
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rr := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestCurveLifecycle(t *testing.T) {
	s := newTestServer()
	buildTestCurve(t, s, "eur-ois", 0.025)

	rr := doJSON(t, s, http.MethodGet, "/api/v1/curves/eur-ois", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var info models.CurveInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "eur-ois", info.ID)
	assert.NotEmpty(t, info.Pillars)
	for _, p := range info.Pillars {
		assert.Greater(t, p.DF, 0.0)
	}

	rr = doJSON(t, s, http.MethodGet, "/api/v1/curves/eur-ois/grid?step=12&horizon=5Y", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, s, http.MethodDelete, "/api/v1/curves/eur-ois", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, s, http.MethodGet, "/api/v1/curves/eur-ois", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildCurveRejectsBadRequests(t *testing.T) {
	s := newTestServer()

	rr := doJSON(t, s, http.MethodPost, "/api/v1/curves", models.BuildCurveRequest{
		Settlement: time.Now(),
		Quotes:     map[string]float64{"1Y": 0.02},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, s, http.MethodPost, "/api/v1/curves", models.BuildCurveRequest{
		ID:         "bad",
		Settlement: time.Now(),
		Quotes:     nil,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPriceSwaption(t *testing.T) {
	s := newTestServer()
	flat := 0.25

	rr := doJSON(t, s, http.MethodPost, "/api/v1/price/swaption", models.SwaptionPriceRequest{
		Model:   "black",
		Type:    "payer",
		Forward: 0.02,
		Strike:  0.025,
		Annuity: 4.5,
		Expiry:  5,
		Tenor:   10,
		Vol:     models.VolSpec{Flat: &flat},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		Price float64 `json:"price"`
		Vol   float64 `json:"vol"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Greater(t, res.Price, 0.0)
	assert.Equal(t, 0.25, res.Vol)

	// Unknown model maps to 400.
	rr = doJSON(t, s, http.MethodPost, "/api/v1/price/swaption", models.SwaptionPriceRequest{
		Model: "heston", Type: "payer", Forward: 0.02, Strike: 0.02,
		Annuity: 4.5, Expiry: 5, Vol: models.VolSpec{Flat: &flat},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPriceSwaptionWithStoredVol(t *testing.T) {
	s := newTestServer()

	rr := doJSON(t, s, http.MethodPost, "/api/v1/vols", models.SaveVolRequest{
		ID: "eur-cube",
		Vol: models.VolSpec{Cube: &models.CubeSpec{
			Offsets: []float64{-0.01, 0, 0.01},
			Slices: []models.SurfaceSpec{
				{Expiries: []float64{1, 10}, Tenors: []float64{2, 10}, Vols: [][]float64{{0.24, 0.26}, {0.22, 0.24}}},
				{Expiries: []float64{1, 10}, Tenors: []float64{2, 10}, Vols: [][]float64{{0.20, 0.22}, {0.18, 0.20}}},
				{Expiries: []float64{1, 10}, Tenors: []float64{2, 10}, Vols: [][]float64{{0.22, 0.24}, {0.20, 0.22}}},
			},
		}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, s, http.MethodPost, "/api/v1/price/swaption", models.SwaptionPriceRequest{
		Model: "black", Type: "receiver", Forward: 0.02, Strike: 0.02,
		Annuity: 4.5, Expiry: 1, Tenor: 2,
		Vol: models.VolSpec{VolID: "eur-cube"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"vol":0.2`)

	// Missing stored vol maps to 404.
	rr = doJSON(t, s, http.MethodPost, "/api/v1/price/swaption", models.SwaptionPriceRequest{
		Model: "black", Type: "payer", Forward: 0.02, Strike: 0.02,
		Annuity: 4.5, Expiry: 1, Vol: models.VolSpec{VolID: "missing"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPriceCMS(t *testing.T) {
	s := newTestServer()
	buildTestCurve(t, s, "eur-ois", 0.03)

	swapStart := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	rr := doJSON(t, s, http.MethodPost, "/api/v1/price/cms", models.CMSPriceRequest{
		CurveID:    "eur-ois",
		Notional:   1e6,
		Accrual:    1,
		PayDate:    swapStart,
		FixingDate: swapStart.AddDate(0, 0, -2),
		SwapStart:  swapStart,
		SwapTenor:  "10Y",
		Calendar:   "NONE",
		Sigma:      0.25,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		ParRate float64 `json:"parRate"`
		CMSRate float64 `json:"cmsRate"`
		PV      float64 `json:"pv"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Greater(t, res.PV, 0.0)
	assert.NotEqual(t, res.ParRate, res.CMSRate)
}

func TestPriceCMSSpread(t *testing.T) {
	s := newTestServer()

	rr := doJSON(t, s, http.MethodPost, "/api/v1/price/cms-spread", models.CMSSpreadRequest{
		Leg1:        models.SpreadLegSpec{Forward: 0.025, AdjustedForward: 0.026, Sigma: 0.28},
		Leg2:        models.SpreadLegSpec{Forward: 0.018, AdjustedForward: 0.0185, Sigma: 0.32},
		Strike:      0.005,
		Expiry:      5,
		Correlation: 0.8,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"value"`)
}

func TestFXForwardsAndBasis(t *testing.T) {
	s := newTestServer()
	buildTestCurve(t, s, "usd-ois", 0.04)
	buildTestCurve(t, s, "eur-ois", 0.02)

	rr := doJSON(t, s, http.MethodPost, "/api/v1/fx/forwards", models.FXForwardsRequest{
		Spot:            1.10,
		DomesticCurveID: "usd-ois",
		ForeignCurveID:  "eur-ois",
		Calendar:        "NONE",
		Tenors:          []string{"3M", "1Y", "5Y"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var points []struct {
		Outright float64 `json:"outright"`
		Points   float64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &points))
	require.Len(t, points, 3)
	assert.Greater(t, points[0].Outright, 1.10)

	rr = doJSON(t, s, http.MethodPost, "/api/v1/fx/basis", models.FXBasisRequest{
		DomesticCurveID:     "usd-ois",
		ForeignProjectionID: "eur-ois",
		ForeignDiscountID:   "eur-ois",
		Calendar:            "NONE",
		Tenors:              []string{"1Y", "2Y"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Neither mode selected maps to 400.
	rr = doJSON(t, s, http.MethodPost, "/api/v1/fx/basis", models.FXBasisRequest{
		DomesticCurveID:     "usd-ois",
		ForeignProjectionID: "eur-ois",
		Calendar:            "NONE",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPriceZCIS(t *testing.T) {
	s := newTestServer()
	buildTestCurve(t, s, "eur-ois", 0.03)

	index := make(map[string]float64)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12*8; i++ {
		index[base.AddDate(0, i, 0).Format("2006-01")] = 100 * (1 + 0.02*float64(i)/12)
	}

	rr := doJSON(t, s, http.MethodPost, "/api/v1/inflation/zcis", models.ZCISRequest{
		CurveID:   "eur-ois",
		Index:     index,
		LagMonths: 3,
		Calendar:  "NONE",
		Notional:  1e6,
		FixedRate: 0.02,
		Start:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Tenor:     "5Y",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"fairRate"`)
}

func TestQuoteSetEndpoint(t *testing.T) {
	s := newTestServer()

	require.NoError(t, s.quotes.Apply(models.Quote{
		Instrument: "EUR-OIS", Tenor: "5Y", Value: 0.027, Timestamp: time.Now(),
	}))

	rr := doJSON(t, s, http.MethodGet, "/api/v1/quotes/EUR-OIS", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"5Y":0.027`)

	rr = doJSON(t, s, http.MethodGet, "/api/v1/quotes/UNKNOWN", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
