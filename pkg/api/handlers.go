package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/marekkolman/rates-engine/internal/cms"
	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/fx"
	"github.com/marekkolman/rates-engine/internal/inflation"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/internal/swaption"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	RespondError(w, http.StatusNotFound, "route not found: "+r.URL.Path)
}

// decodeJSON decodes the request body, responding 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// Curve handlers

func (s *Server) handleListCurves(w http.ResponseWriter, r *http.Request) {
	records := s.curves.List()
	infos := make([]*models.CurveInfo, len(records))
	for i, rec := range records {
		infos[i] = rec.Info()
	}
	RespondJSON(w, http.StatusOK, infos)
}

func (s *Server) handleBuildCurve(w http.ResponseWriter, r *http.Request) {
	var req models.BuildCurveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		RespondError(w, http.StatusBadRequest, "curve id is required")
		return
	}
	if req.Settlement.IsZero() {
		RespondError(w, http.StatusBadRequest, "settlement date is required")
		return
	}

	conv, err := buildConvention(req.Calendar, req.Frequency, req.DayCount)
	if err != nil {
		respondAppError(w, err)
		return
	}

	start := time.Now()
	built, err := curve.Bootstrap(req.Settlement, req.Quotes, conv)
	s.metricsRecorder.RecordCurveBuild(req.ID, len(req.Quotes), err, time.Since(start))
	if err != nil {
		respondAppError(w, err)
		return
	}

	rec := &store.CurveRecord{
		ID:       req.ID,
		Currency: req.Currency,
		BuiltAt:  time.Now().UTC(),
		Curve:    built,
	}
	if err := s.curves.Save(rec); err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, rec.Info())
}

func (s *Server) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	rec, err := s.curves.Get(mux.Vars(r)["id"])
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rec.Info())
}

func (s *Server) handleDeleteCurve(w http.ResponseWriter, r *http.Request) {
	if err := s.curves.Delete(mux.Vars(r)["id"]); err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCurveGrid(w http.ResponseWriter, r *http.Request) {
	rec, err := s.curves.Get(mux.Vars(r)["id"])
	if err != nil {
		respondAppError(w, err)
		return
	}

	stepMonths := 12
	if v := r.URL.Query().Get("step"); v != "" {
		if stepMonths, err = strconv.Atoi(v); err != nil {
			RespondError(w, http.StatusBadRequest, "invalid step parameter")
			return
		}
	}
	horizonTenor := "10Y"
	if v := r.URL.Query().Get("horizon"); v != "" {
		horizonTenor = v
	}
	tenor, err := schedule.ParseTenor(horizonTenor)
	if err != nil {
		respondAppError(w, err)
		return
	}
	dc, err := schedule.ParseDayCount(r.URL.Query().Get("dayCount"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	grid, err := curve.ForwardGrid(rec.Curve, stepMonths, tenor.AddTo(rec.Curve.Settlement()), dc)
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, grid)
}

// Vol handlers

func (s *Server) handleSaveVol(w http.ResponseWriter, r *http.Request) {
	var req models.SaveVolRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Vol.VolID != "" {
		RespondError(w, http.StatusBadRequest, "vol spec must be inline when saving")
		return
	}
	v, err := buildVol(req.Vol, s.vols)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if err := s.vols.Save(req.ID, v); err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

func (s *Server) handleDeleteVol(w http.ResponseWriter, r *http.Request) {
	if err := s.vols.Delete(mux.Vars(r)["id"]); err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Pricing handlers

func (s *Server) handlePriceSwaption(w http.ResponseWriter, r *http.Request) {
	var req models.SwaptionPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vols, err := buildVol(req.Vol, s.vols)
	if err != nil {
		respondAppError(w, err)
		return
	}
	pricer, err := swaption.NewPricer(vols)
	if err != nil {
		respondAppError(w, err)
		return
	}

	start := time.Now()
	res, err := pricer.Price(swaption.Request{
		Model:   swaption.Model(strings.ToUpper(req.Model)),
		Type:    swaption.OptionType(strings.ToUpper(req.Type)),
		Forward: req.Forward,
		Strike:  req.Strike,
		Annuity: req.Annuity,
		Expiry:  req.Expiry,
		Tenor:   req.Tenor,
		Shift:   req.Shift,
	})
	s.metricsRecorder.RecordPricing("swaption", err, time.Since(start))
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

func (s *Server) handlePriceCMS(w http.ResponseWriter, r *http.Request) {
	var req models.CMSPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.curves.Get(req.CurveID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	cal, err := schedule.ParseCalendar(req.Calendar)
	if err != nil {
		respondAppError(w, err)
		return
	}
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		respondAppError(w, err)
		return
	}
	dc, err := schedule.ParseDayCount(req.DayCount)
	if err != nil {
		respondAppError(w, err)
		return
	}
	tenor, err := schedule.ParseTenor(req.SwapTenor)
	if err != nil {
		respondAppError(w, err)
		return
	}

	periods, err := schedule.Generate(req.SwapStart, tenor.AddTo(req.SwapStart), schedule.LegConvention{
		Frequency: freq,
		DayCount:  dc,
		Calendar:  cal,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}

	start := time.Now()
	res, err := cms.NewCouponPricer().Price(rec.Curve, cms.Coupon{
		Notional:   req.Notional,
		Accrual:    req.Accrual,
		PayDate:    req.PayDate,
		FixingDate: req.FixingDate,
		Underlying: periods,
		Sigma:      req.Sigma,
		Shift:      req.Shift,
	})
	s.metricsRecorder.RecordPricing("cms", err, time.Since(start))
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

func (s *Server) handlePriceCMSSpread(w http.ResponseWriter, r *http.Request) {
	var req models.CMSSpreadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := cms.NewSpreadPricer().Price(cms.SpreadOption{
		Leg1:        spreadLeg(req.Leg1),
		Leg2:        spreadLeg(req.Leg2),
		Strike:      req.Strike,
		Expiry:      req.Expiry,
		Correlation: req.Correlation,
	})
	s.metricsRecorder.RecordPricing("cms-spread", err, time.Since(start))
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

func spreadLeg(spec models.SpreadLegSpec) cms.SpreadLeg {
	return cms.SpreadLeg{
		Forward:         spec.Forward,
		AdjustedForward: spec.AdjustedForward,
		Sigma:           spec.Sigma,
		Shift:           spec.Shift,
	}
}

// FX handlers

func (s *Server) handleFXForwards(w http.ResponseWriter, r *http.Request) {
	var req models.FXForwardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	domestic, err := s.curves.Get(req.DomesticCurveID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	foreign, err := s.curves.Get(req.ForeignCurveID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	cal, err := schedule.ParseCalendar(req.Calendar)
	if err != nil {
		respondAppError(w, err)
		return
	}

	points, err := fx.Forwards(req.Spot, domestic.Curve, foreign.Curve, cal, req.Tenors)
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, points)
}

func (s *Server) handleFXBasis(w http.ResponseWriter, r *http.Request) {
	var req models.FXBasisRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	domestic, err := s.curves.Get(req.DomesticCurveID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	foreignProj, err := s.curves.Get(req.ForeignProjectionID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	cal, err := schedule.ParseCalendar(req.Calendar)
	if err != nil {
		respondAppError(w, err)
		return
	}
	bootstrapper := fx.NewBootstrapper(fx.DefaultBasisConvention(cal))

	switch {
	case req.ForeignDiscountID != "":
		foreignDisc, derr := s.curves.Get(req.ForeignDiscountID)
		if derr != nil {
			respondAppError(w, derr)
			return
		}
		spreads, serr := bootstrapper.FairSpreads(fx.Market{
			Domestic:          domestic.Curve,
			ForeignProjection: foreignProj.Curve,
			ForeignDiscount:   foreignDisc.Curve,
		}, req.Tenors)
		if serr != nil {
			respondAppError(w, serr)
			return
		}
		RespondJSON(w, http.StatusOK, spreads)

	case len(req.Spreads) > 0:
		built, berr := bootstrapper.BootstrapDiscountCurve(fx.Market{
			Domestic:          domestic.Curve,
			ForeignProjection: foreignProj.Curve,
		}, req.Spreads)
		if berr != nil {
			respondAppError(w, berr)
			return
		}
		dates, dfs := built.Pillars()
		pillars := make([]models.CurvePillar, len(dates))
		for i := range dates {
			pillars[i] = models.CurvePillar{Date: dates[i], DF: dfs[i]}
		}
		RespondJSON(w, http.StatusOK, pillars)

	default:
		respondAppError(w, errors.InvalidArgument("basis request needs foreignDiscountId (solve spreads) or spreads (bootstrap curve)"))
	}
}

// Inflation handlers

func (s *Server) handlePriceZCIS(w http.ResponseWriter, r *http.Request) {
	var req models.ZCISRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.curves.Get(req.CurveID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	index, err := buildIndexCurve(req.Index)
	if err != nil {
		respondAppError(w, err)
		return
	}
	cal, err := schedule.ParseCalendar(req.Calendar)
	if err != nil {
		respondAppError(w, err)
		return
	}
	tenor, err := schedule.ParseTenor(req.Tenor)
	if err != nil {
		respondAppError(w, err)
		return
	}

	start := time.Now()
	res, err := inflation.Price(rec.Curve, index, inflation.Convention{
		LagMonths:    req.LagMonths,
		Interpolated: req.Interpolated,
		Calendar:     cal,
	}, inflation.Swap{
		Notional:  req.Notional,
		FixedRate: req.FixedRate,
		Start:     req.Start,
		Tenor:     tenor,
	})
	s.metricsRecorder.RecordPricing("zcis", err, time.Since(start))
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// Quote handlers

func (s *Server) handleGetQuoteSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.quotes.Get(mux.Vars(r)["id"])
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, set)
}
