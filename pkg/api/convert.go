package api

import (
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/inflation"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/internal/vol"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// buildVol turns a request's vol spec into a structure, resolving stored
// references against the vol store.
func buildVol(spec models.VolSpec, vols *store.VolStore) (vol.Structure, error) {
	set := 0
	if spec.Flat != nil {
		set++
	}
	if spec.Surface != nil {
		set++
	}
	if spec.Cube != nil {
		set++
	}
	if spec.VolID != "" {
		set++
	}
	if set != 1 {
		return nil, errors.InvalidArgument("vol spec needs exactly one of flat, surface, cube or volId")
	}

	switch {
	case spec.Flat != nil:
		return vol.NewFlat(*spec.Flat)
	case spec.Surface != nil:
		return buildSurface(*spec.Surface)
	case spec.Cube != nil:
		surfaces := make([]*vol.Surface, len(spec.Cube.Slices))
		for i, slice := range spec.Cube.Slices {
			s, err := buildSurface(slice)
			if err != nil {
				return nil, err
			}
			surfaces[i] = s
		}
		return vol.NewCube(spec.Cube.Offsets, surfaces)
	default:
		return vols.Get(spec.VolID)
	}
}

func buildSurface(spec models.SurfaceSpec) (*vol.Surface, error) {
	return vol.NewSurface(spec.Expiries, spec.Tenors, spec.Vols)
}

// buildConvention assembles a bootstrap convention from request strings,
// applying market defaults for omitted fields.
func buildConvention(calendar, frequency, dayCount string) (curve.BootstrapConvention, error) {
	cal, err := schedule.ParseCalendar(calendar)
	if err != nil {
		return curve.BootstrapConvention{}, err
	}
	freq, err := schedule.ParseFrequency(frequency)
	if err != nil {
		return curve.BootstrapConvention{}, err
	}
	dc, err := schedule.ParseDayCount(dayCount)
	if err != nil {
		return curve.BootstrapConvention{}, err
	}
	return curve.BootstrapConvention{Calendar: cal, Frequency: freq, DayCount: dc}, nil
}

// buildIndexCurve parses "2006-01" keyed index levels.
func buildIndexCurve(index map[string]float64) (*inflation.IndexCurve, error) {
	if len(index) == 0 {
		return nil, errors.InvalidArgument("index path is empty")
	}
	obs := make(map[time.Time]float64, len(index))
	for month, level := range index {
		d, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, errors.InvalidArgumentf("invalid index month %q", month)
		}
		obs[d] = level
	}
	return inflation.NewIndexCurve(obs)
}
