// Package replay implements the CSV/Parquet replay service of spec
// §4.14: recorded OHLC bars are read back and synthesized into
// tick-scale best-bid/best-ask MdTicks fanned out over the MD bus, at a
// controllable speed with pause/resume/seek.
package replay

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/autovant/dma-engine/internal/domain"
)

// bar is one OHLC record read from CSV or Parquet, prior to synthesis
// into tick-scale bid/ask.
type bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ReadSource loads bars from a "csv://" or "parquet://" prefixed path,
// or infers the scheme from the file extension when unprefixed.
func ReadSource(source string) ([]bar, error) {
	source = strings.TrimSpace(source)
	scheme, path := parseSource(source)

	switch scheme {
	case "csv":
		return readCSV(path)
	case "parquet":
		return readParquet(path)
	case "":
		switch {
		case strings.HasSuffix(strings.ToLower(path), ".csv"):
			return readCSV(path)
		case strings.HasSuffix(strings.ToLower(path), ".parquet"):
			return readParquet(path)
		}
	}
	return nil, fmt.Errorf("replay: unsupported source: %s", source)
}

// LoadTicks loads replay ticks from source: ".jsonl" files are read as
// recorder output directly, everything else is loaded as OHLC bars
// (CSV/Parquet) and synthesized into tick-scale bid/ask.
func LoadTicks(source string) ([]domain.MdTick, error) {
	if strings.HasSuffix(strings.ToLower(source), ".jsonl") {
		return ReadJSONL(source)
	}
	bars, err := ReadSource(source)
	if err != nil {
		return nil, err
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return ticksFromBars(bars), nil
}

func parseSource(source string) (scheme string, path string) {
	if idx := strings.Index(source, "://"); idx != -1 {
		return strings.ToLower(source[:idx]), source[idx+3:]
	}
	return "", source
}

func readCSV(path string) ([]bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("replay: csv file %s has no data rows", path)
	}

	header := make(map[string]int)
	for idx, col := range records[0] {
		header[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	for _, key := range []string{"timestamp", "open", "high", "low", "close"} {
		if _, ok := header[key]; !ok {
			return nil, fmt.Errorf("replay: csv file %s missing required column %q", path, key)
		}
	}
	symbolIdx, hasSymbol := header["symbol"]
	volumeIdx, hasVolume := header["volume"]

	var bars []bar
	for _, record := range records[1:] {
		ts, err := time.Parse(time.RFC3339, record[header["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("replay: invalid timestamp %q: %w", record[header["timestamp"]], err)
		}
		open, err := strconv.ParseFloat(record[header["open"]], 64)
		if err != nil {
			return nil, fmt.Errorf("replay: invalid open price %q: %w", record[header["open"]], err)
		}
		high, err := strconv.ParseFloat(record[header["high"]], 64)
		if err != nil {
			return nil, fmt.Errorf("replay: invalid high price %q: %w", record[header["high"]], err)
		}
		low, err := strconv.ParseFloat(record[header["low"]], 64)
		if err != nil {
			return nil, fmt.Errorf("replay: invalid low price %q: %w", record[header["low"]], err)
		}
		closeVal, err := strconv.ParseFloat(record[header["close"]], 64)
		if err != nil {
			return nil, fmt.Errorf("replay: invalid close price %q: %w", record[header["close"]], err)
		}

		volume := 0.0
		if hasVolume && volumeIdx < len(record) && record[volumeIdx] != "" {
			if volume, err = strconv.ParseFloat(record[volumeIdx], 64); err != nil {
				volume = 0.0
			}
		}
		symbol := "BTCUSDT"
		if hasSymbol && symbolIdx < len(record) && record[symbolIdx] != "" {
			symbol = record[symbolIdx]
		}

		bars = append(bars, bar{Symbol: symbol, Timestamp: ts, Open: open, High: high, Low: low, Close: closeVal, Volume: volume})
	}
	return bars, nil
}

func readParquet(path string) ([]bar, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	type parquetRow struct {
		Timestamp int64   `parquet:"name=timestamp"`
		Symbol    string  `parquet:"name=symbol"`
		Open      float64 `parquet:"name=open"`
		High      float64 `parquet:"name=high"`
		Low       float64 `parquet:"name=low"`
		Close     float64 `parquet:"name=close"`
		Volume    float64 `parquet:"name=volume"`
	}

	pr, err := reader.NewParquetReader(fr, new(parquetRow), 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	rows := make([]parquetRow, numRows)
	if err := pr.Read(&rows); err != nil {
		return nil, err
	}

	var bars []bar
	for _, row := range rows {
		var ts time.Time
		switch {
		case row.Timestamp > 1e16:
			ts = time.Unix(0, row.Timestamp).UTC()
		case row.Timestamp > 1e12:
			ts = time.Unix(0, row.Timestamp*int64(time.Millisecond)).UTC()
		default:
			ts = time.Unix(row.Timestamp, 0).UTC()
		}
		if row.Symbol == "" {
			row.Symbol = "BTCUSDT"
		}
		bars = append(bars, bar{Symbol: row.Symbol, Timestamp: ts, Open: row.Open, High: row.High, Low: row.Low, Close: row.Close, Volume: row.Volume})
	}
	return bars, nil
}

// synthesizeTick derives a tick-scale best-bid/best-ask MdTick from a
// bar, the same spread/close synthesis idiom as the source bars, here
// converted to integer ticks instead of floating venue prices.
func synthesizeTick(b bar) domain.MdTick {
	spread := b.High - b.Low
	if s := b.Close * 0.0004; s > spread*0.2 {
		spread = s / 0.2
	}
	spread = spread * 0.2
	if spread < 0.5 {
		spread = 0.5
	}
	bestBid := b.Close - spread/2
	bestAsk := b.Close + spread/2
	return domain.MdTick{
		TsNs:    b.Timestamp.UnixNano(),
		Symbol:  b.Symbol,
		BestBid: int64(bestBid*100 + 0.5),
		BestAsk: int64(bestAsk*100 + 0.5),
	}
}
