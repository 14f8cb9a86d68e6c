// Command genmock writes a synthetic grid-info file and a set of AODN-named
// along-track tiles for one mission, so the gridding pipeline can run
// locally without the archive.
//
// Usage:
//
//	go run ./cmd/genmock -o data/mock -m 0 --tracks 6 --family KA
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// region is the ocean box covered by the mock grid and tracks.
type region struct {
	latMin, latMax float64
	lonMin, lonMax float64 // 0..360
	step           float64
}

var tasman = region{latMin: -45, latMax: -30, lonMin: 145, lonMax: 165, step: 0.5}

func main() {
	if err := run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	parser := argparse.NewParser("genmock", "Writes a synthetic grid and along-track tiles for local runs")
	outDir := parser.String("o", "out", &argparse.Options{
		Default: "data/mock",
		Help:    "output directory; tiles go under <out>/<mission dir>"})
	index := parser.Int("m", "mission", &argparse.Options{
		Default: 0,
		Help:    "mission index"})
	tracks := parser.Int("t", "tracks", &argparse.Options{
		Default: 4,
		Help:    "number of satellite passes"})
	family := parser.Selector("f", "family", []string{"KU", "KA"}, &argparse.Options{
		Default: "KU",
		Help:    "wave height family written to the tiles"})
	date := parser.String("d", "date", &argparse.Options{
		Default: "2015060100",
		Help:    "start of the first pass, YYYYMMDDHH"})
	seed := parser.Int("s", "seed", &argparse.Options{
		Default: 1,
		Help:    "random seed"})

	if err := parser.Parse(args); err != nil {
		return fmt.Errorf("%s", parser.Usage(err))
	}

	m, err := domain.ResolveMission(*index)
	if err != nil {
		return err
	}
	start, err := domain.ParseDate(*date)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(*outDir, m.Dir), 0o755); err != nil {
		return err
	}

	gridPath := filepath.Join(*outDir, "gridInfo.nc")
	if err := writeGrid(gridPath, tasman); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", gridPath)

	rng := rand.New(rand.NewPCG(uint64(*seed), 0))
	tiles := map[domain.TileKey]*domain.Observations{}
	for i := range *tracks {
		pass(tiles, tasman, start.Add(time.Duration(i)*50*time.Minute), i, rng)
	}

	keys := make([]domain.TileKey, 0, len(tiles))
	for k := range tiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].Lat != keys[b].Lat {
			return keys[a].Lat < keys[b].Lat
		}
		return keys[a].Lon < keys[b].Lon
	})

	records := 0
	for _, k := range keys {
		obs := tiles[k]
		if err := ncfile.WriteTile(k.Path(*outDir, m), domain.Family(*family), *obs); err != nil {
			return fmt.Errorf("tile %s: %w", k.FileName(m), err)
		}
		records += obs.Len()
	}
	fmt.Printf("wrote %d tiles with %d records for %s\n", len(keys), records, m.Name)
	fmt.Printf("run with: DATA_DIR=%s GRID_FILE=%s gridsat %d\n", *outDir, gridPath, m.Index)
	return nil
}

func writeGrid(path string, r region) error {
	var lats, lons []float64
	for lat := r.latMin; lat <= r.latMax; lat += r.step {
		lats = append(lats, lat)
	}
	for lon := r.lonMin; lon <= r.lonMax; lon += r.step {
		lons = append(lons, lon)
	}
	mask := make([][]float64, len(lats))
	for i := range mask {
		mask[i] = make([]float64, len(lons))
		for j := range mask[i] {
			mask[i][j] = 1
		}
	}
	// A small island so the mask is exercised.
	mask[len(lats)/2][len(lons)/2] = 0
	return ncfile.WriteGrid(path, lats, lons, mask)
}

// pass samples one ground track at 1 Hz across the region. Ascending and
// descending passes alternate.
func pass(tiles map[domain.TileKey]*domain.Observations, r region, start time.Time, n int, rng *rand.Rand) {
	const (
		dLat = 0.06 // degrees per second
		dLon = 0.02
	)
	lat, dir := r.latMin, 1.0
	if n%2 == 1 {
		lat, dir = r.latMax, -1.0
	}
	lon := r.lonMin + (r.lonMax-r.lonMin)*float64(n+1)/float64(n+2)

	day0 := domain.TimeToDays(start)
	for s := 0; lat >= r.latMin && lat <= r.latMax; s++ {
		key := domain.TileKey{Lat: int(math.Floor(lat)), Lon: int(math.Floor(lon))}
		obs, ok := tiles[key]
		if !ok {
			obs = &domain.Observations{}
			tiles[key] = obs
		}

		swh := 2.5 + 1.5*math.Sin(lat/5) + rng.NormFloat64()*0.1
		wind := 9 + 3*math.Cos(lat/7) + rng.NormFloat64()*0.3
		obs.Time = append(obs.Time, day0+float64(s)/86400)
		obs.Lat = append(obs.Lat, lat)
		obs.Lon = append(obs.Lon, lon)
		obs.SWH = append(obs.SWH, swh)
		obs.SWHCal = append(obs.SWHCal, swh*1.02)
		obs.SWHC = append(obs.SWHC, swh*0.98)
		obs.Wind = append(obs.Wind, wind)
		obs.WindCal = append(obs.WindCal, wind*1.01)
		obs.Sig0Std = append(obs.Sig0Std, 0.1+rng.Float64()*0.2)
		obs.SWHObs = append(obs.SWHObs, 20)
		obs.SWHStd = append(obs.SWHStd, 0.2+rng.Float64()*0.3)
		obs.SWHQC = append(obs.SWHQC, 0)

		lat += dir * dLat
		lon += dLon
	}
}
