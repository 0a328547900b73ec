// Package indicators computes technical indicators (EMA, RSI, ADX, ATR, MACD)
// over candlestick series and aligns them into per-candle snapshots.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// Params window lengths for every indicator. The slow EMA period is the
// warm-up floor: no snapshot exists before it is fully populated.
type Params struct {
	EMAFastPeriod int
	EMAMidPeriod  int
	EMASlowPeriod int
	RSIPeriod     int
	ADXPeriod     int
	ATRPeriod     int
	ATRMeanWindow int
}

// DefaultParams returns the stock window configuration (EMA 5/20/100,
// RSI/ADX/ATR 14, ATR mean over the last 14 ATR values).
func DefaultParams() Params {
	return Params{
		EMAFastPeriod: 5,
		EMAMidPeriod:  20,
		EMASlowPeriod: 100,
		RSIPeriod:     14,
		ADXPeriod:     14,
		ATRPeriod:     14,
		ATRMeanWindow: 14,
	}
}

// macdSignalWarmup is the warm-up of the 12/26/9 MACD signal line.
const macdSignalWarmup = 34

// minCandles returns the shortest series for which every indicator has at
// least one defined value.
func (p Params) minCandles() int {
	need := p.EMASlowPeriod
	if v := p.ATRPeriod + p.ATRMeanWindow; v > need {
		need = v
	}
	if v := 2 * p.ADXPeriod; v > need {
		need = v
	}
	if macdSignalWarmup > need {
		need = macdSignalWarmup
	}
	return need
}

// Compute produces one IndicatorSnapshot per candle past warm-up.
//
// Series shorter than the warm-up floor (including fewer than 2 candles)
// yield a Timeframe with no snapshots and a nil error; callers must treat
// those candles as unusable for signal evaluation.
func Compute(interval string, candles []domain.MarketCandle, p Params) (*domain.Timeframe, error) {
	if len(candles) < p.minCandles() {
		return domain.NewTimeframe(interval, candles, nil), nil
	}

	n := len(candles)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i, c := range candles {
		highs[i], _ = c.High.Float64()
		lows[i], _ = c.Low.Float64()
		closes[i], _ = c.Close.Float64()
	}

	emaFast := emaSeries(closes, p.EMAFastPeriod)
	emaMid := emaSeries(closes, p.EMAMidPeriod)
	emaSlow := emaSeries(closes, p.EMASlowPeriod)
	rsi := rsiSeries(closes, p.RSIPeriod)
	atr := atrSeries(highs, lows, closes, p.ATRPeriod)
	atrMean := trailingMean(atr, p.ATRMeanWindow)
	adx := adxSeries(highs, lows, closes, p.ADXPeriod)
	macd, macdSignal := macdSeries(closes)

	series := [][]float64{emaFast, emaMid, emaSlow, rsi, atr, atrMean, adx, macd, macdSignal}

	// align on the shortest series: each indicator has its own warm-up,
	// snapshots exist only where all of them are defined
	minLen := n
	for _, s := range series {
		if len(s) < minLen {
			minLen = len(s)
		}
	}
	if minLen == 0 {
		return domain.NewTimeframe(interval, candles, nil), nil
	}

	snapshots := make([]domain.IndicatorSnapshot, minLen)
	for i := 0; i < minLen; i++ {
		snapshots[i] = domain.IndicatorSnapshot{
			EMAFast:    decimal.NewFromFloat(emaFast[len(emaFast)-minLen+i]),
			EMAMid:     decimal.NewFromFloat(emaMid[len(emaMid)-minLen+i]),
			EMASlow:    decimal.NewFromFloat(emaSlow[len(emaSlow)-minLen+i]),
			RSI:        decimal.NewFromFloat(rsi[len(rsi)-minLen+i]),
			ADX:        decimal.NewFromFloat(adx[len(adx)-minLen+i]),
			ATR:        decimal.NewFromFloat(atr[len(atr)-minLen+i]),
			ATRMean:    decimal.NewFromFloat(atrMean[len(atrMean)-minLen+i]),
			MACD:       decimal.NewFromFloat(macd[len(macd)-minLen+i]),
			MACDSignal: decimal.NewFromFloat(macdSignal[len(macdSignal)-minLen+i]),
		}
	}

	return domain.NewTimeframe(interval, candles, snapshots), nil
}

// emaSeries computes an EMA seeded by the simple average of the first
// `period` closes.
func emaSeries(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	ema := trend.NewEmaWithPeriod[float64](period)
	return helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
}

// rsiSeries computes Wilder's RSI over close deltas.
func rsiSeries(closes []float64, period int) []float64 {
	if len(closes) < period+1 {
		return nil
	}
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes)))
}

// atrSeries computes Wilder's average true range.
func atrSeries(highs, lows, closes []float64, period int) []float64 {
	if len(closes) < period+1 {
		return nil
	}
	atr := volatility.NewAtrWithPeriod[float64](period)
	return helper.ChanToSlice(atr.Compute(
		helper.SliceToChan(highs),
		helper.SliceToChan(lows),
		helper.SliceToChan(closes),
	))
}

// macdSeries computes the 12/26/9 MACD line and signal line.
func macdSeries(closes []float64) ([]float64, []float64) {
	if len(closes) < macdSignalWarmup {
		return nil, nil
	}

	macd := trend.NewMacd[float64]()
	macdChan, signalChan := macd.Compute(helper.SliceToChan(closes))

	var macdVals []float64
	done := make(chan struct{})
	go func() {
		macdVals = helper.ChanToSlice(macdChan)
		close(done)
	}()
	signalVals := helper.ChanToSlice(signalChan)
	<-done

	return macdVals, signalVals
}

// adxSeries computes Wilder's Average Directional Index. The first value is
// defined after 2*period candles: period candles seed the smoothed TR/DM
// sums, then period DX values seed the ADX average.
func adxSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if n < 2*period+1 {
		return nil
	}

	trs := make([]float64, 0, n-1)
	pdms := make([]float64, 0, n-1)
	mdms := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]

		var pdm, mdm float64
		if up > down && up > 0 {
			pdm = up
		}
		if down > up && down > 0 {
			mdm = down
		}

		tr := math.Max(highs[i]-lows[i], math.Max(
			math.Abs(highs[i]-closes[i-1]),
			math.Abs(lows[i]-closes[i-1])))

		trs = append(trs, tr)
		pdms = append(pdms, pdm)
		mdms = append(mdms, mdm)
	}

	var trSum, pdmSum, mdmSum float64
	for i := 0; i < period; i++ {
		trSum += trs[i]
		pdmSum += pdms[i]
		mdmSum += mdms[i]
	}

	dx := func() float64 {
		if trSum == 0 {
			return 0
		}
		pdi := 100 * pdmSum / trSum
		mdi := 100 * mdmSum / trSum
		if pdi+mdi == 0 {
			return 0
		}
		return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
	}

	fp := float64(period)
	dxs := []float64{dx()}
	for i := period; i < len(trs); i++ {
		trSum = trSum - trSum/fp + trs[i]
		pdmSum = pdmSum - pdmSum/fp + pdms[i]
		mdmSum = mdmSum - mdmSum/fp + mdms[i]
		dxs = append(dxs, dx())
	}

	if len(dxs) < period {
		return nil
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += dxs[i]
	}
	adx := sum / fp

	out := make([]float64, 0, len(dxs)-period+1)
	out = append(out, adx)
	for i := period; i < len(dxs); i++ {
		adx = (adx*(fp-1) + dxs[i]) / fp
		out = append(out, adx)
	}
	return out
}

// trailingMean computes a trailing simple mean over a fixed window.
func trailingMean(vals []float64, window int) []float64 {
	if window <= 0 || len(vals) < window {
		return nil
	}

	out := make([]float64, 0, len(vals)-window+1)
	var sum float64
	for i, v := range vals {
		sum += v
		if i >= window {
			sum -= vals[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}
